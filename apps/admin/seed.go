package main

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

var (
	demoNames = []string{
		"Amelia Clarke", "Noah Patel", "Olivia Hassan", "George Osei",
		"Isla Murphy", "Leo Zhang", "Freya Novak", "Arthur Okafor",
		"Maya Lindqvist", "Oscar Reyes", "Poppy Adeyemi", "Finn Gallagher",
	}
	demoSubjects = []string{"maths", "biology", "chemistry", "physics", "english-lit", "history"}
)

// seedDemo populates the feed tables with plausible demo data so a fresh
// environment has a board to look at.
func (cli *commandLine) seedDemo(users int) error {
	db, err := cli.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	now := time.Now().UTC()

	for i := 0; i < users; i++ {
		name := demoNames[i%len(demoNames)]
		if i >= len(demoNames) {
			name = fmt.Sprintf("%s %d", name, i/len(demoNames)+1)
		}
		uname := strings.ToLower(strings.ReplaceAll(name, " ", "."))
		if err := cli.seedUser(db, rng, now, name, uname); err != nil {
			return err
		}
	}
	cli.logger.Info(fmt.Sprintf("seeded %d demo users", users))
	return nil
}

func (cli *commandLine) seedUser(db *sqlx.DB, rng *rand.Rand, now time.Time, name, uname string) error {
	id := uuid.NewString()

	_, err := db.Exec(
		`INSERT INTO profiles (id, full_name, username, email) VALUES ($1, $2, $3, $4)`,
		id, name, uname, uname+"@example.com",
	)
	if err != nil {
		return errors.Wrap(err, "seeding profile")
	}

	points := rng.Intn(2000) // a few users legitimately sit at 0 and stay off the board
	if _, err = db.Exec(
		`INSERT INTO user_points (user_id, total_points) VALUES ($1, $2)`, id, points,
	); err != nil {
		return errors.Wrap(err, "seeding points")
	}

	if _, err = db.Exec(
		`INSERT INTO user_streaks (user_id, current_streak) VALUES ($1, $2)`, id, rng.Intn(30),
	); err != nil {
		return errors.Wrap(err, "seeding streak")
	}

	for i := 0; i < rng.Intn(8); i++ {
		if _, err = db.Exec(
			`INSERT INTO user_achievements (user_id, earned_at) VALUES ($1, $2)`,
			id, now.AddDate(0, 0, -rng.Intn(60)),
		); err != nil {
			return errors.Wrap(err, "seeding achievements")
		}
	}

	for i := 0; i < rng.Intn(20); i++ {
		subject := demoSubjects[rng.Intn(len(demoSubjects))]
		completedAt := now.AddDate(0, 0, -rng.Intn(21))
		if _, err = db.Exec(
			`INSERT INTO quiz_completions (user_id, subject_id, completed_at) VALUES ($1, $2, $3)`,
			id, subject, completedAt,
		); err != nil {
			return errors.Wrap(err, "seeding quiz completions")
		}
		activityType := "quiz"
		if rng.Intn(5) == 0 {
			activityType = "mock_exam"
		}
		if _, err = db.Exec(
			`INSERT INTO user_activity (user_id, activity_type, metadata, created_at) VALUES ($1, $2, $3, $4)`,
			id, activityType, fmt.Sprintf(`{"subject": %q}`, subject), completedAt,
		); err != nil {
			return errors.Wrap(err, "seeding activity")
		}
	}
	return nil
}
