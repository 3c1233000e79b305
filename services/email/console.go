package emailsvc

import (
	"fmt"
	"net/mail"
	"sync"

	"github.com/educlara/educlara/core"
)

// SentMessages records messages handled by the mock console service.
var (
	SentMessages = make([]core.EmailMessage, 0)
	mu           sync.Mutex
)

// consoleService writes emails to stdout. Used in DEV mode and, with output
// disabled, as the test mock.
type consoleService struct {
	defaultFromEmail mail.Address
	subjPrefix       string
	disableOutput    bool
	recordMessages   bool
}

var _ core.EmailService = (*consoleService)(nil)

func NewConsoleService() core.EmailService {
	return &consoleService{
		defaultFromEmail: core.Conf.FromEmail(),
		subjPrefix:       "[" + core.Conf.AppName + "] ",
	}
}

// NewConsoleServiceMock records messages instead of printing them.
func NewConsoleServiceMock() core.EmailService {
	return &consoleService{
		defaultFromEmail: core.Conf.FromEmail(),
		subjPrefix:       "[" + core.Conf.AppName + "] ",
		disableOutput:    true,
		recordMessages:   true,
	}
}

// ClearSentMessages resets the mock capture between tests.
func ClearSentMessages() {
	mu.Lock()
	defer mu.Unlock()
	SentMessages = SentMessages[:0]
}

func (svc consoleService) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		if !(msg.HasRecipients() && msg.HasContent()) {
			continue
		}
		if svc.recordMessages {
			mu.Lock()
			SentMessages = append(SentMessages, *msg)
			mu.Unlock()
		}
		if svc.disableOutput {
			continue
		}
		fmt.Printf("From: %s\n", svc.defaultFromEmail.String())
		for _, to := range msg.To {
			fmt.Printf("To: %s\n", to.String())
		}
		fmt.Printf("Subject: %s\n\n%s\n", svc.subjPrefix+msg.Subject, msg.TextContent)
	}
}
