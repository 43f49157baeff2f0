package main

import (
	"context"
	"fmt"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/AlbertPrograms/nodecs-backend/internal/config"
	"github.com/AlbertPrograms/nodecs-backend/internal/database"
	"github.com/AlbertPrograms/nodecs-backend/internal/logger"
	"github.com/AlbertPrograms/nodecs-backend/internal/model"
)

// Demo tasks loaded on first setup. Submissions against these exercise
// the full grading path, including the hidden cases.
var seedTasks = []model.Task{
	{
		ID:                   1,
		Description:          "Print `Hello world!` to the standard output.",
		ExpectedOutput:       []string{"Hello world!"},
		HiddenExpectedOutput: []string{"Hello world!"},
		PointValue:           1,
		Practicable:          true,
	},
	{
		ID:          2,
		Description: "Write a program that prints the Fibonacci sequence up to the index given as argument, separated by comma and space. E.g. input: `3`, output: `1, 1, 2`",
		TestData:    []string{"1", "5", "10"},
		ExpectedOutput: []string{
			"1",
			"1, 1, 2, 3, 5",
			"1, 1, 2, 3, 5, 8, 13, 21, 34, 55",
		},
		HiddenTestData: []string{"1", "2", "10", "30"},
		HiddenExpectedOutput: []string{
			"1",
			"1, 1",
			"1, 1, 2, 3, 5, 8, 13, 21, 34, 55",
			"1, 1, 2, 3, 5, 8, 13, 21, 34, 55, 89, 144, 233, 377, 610, 987, 1597, 2584, 4181, 6765, 10946, 17711, 28657, 46368, 75025, 121393, 196418, 317811, 514229, 832040",
		},
		PointValue:  3,
		Practicable: true,
	},
}

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	fmt.Println("=== First Time Setup ===")
	fmt.Print("Enter admin password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading password")
		return
	}
	fmt.Println()
	if len(bytePassword) < 6 {
		fmt.Println("Error: Password must be at least 6 characters")
		return
	}

	hash, err := bcrypt.GenerateFromPassword(bytePassword, bcrypt.DefaultCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Password hashing failed")
	}

	if err := seedAdmin(ctx, pool, string(hash)); err != nil {
		log.Fatal().Err(err).Msg("Admin seeding failed")
	}
	log.Info().Msg("Admin user seeded")

	for _, task := range seedTasks {
		if err := seedTask(ctx, pool, task); err != nil {
			log.Fatal().Err(err).Int64("task_id", task.ID).Msg("Task seeding failed")
		}
	}
	log.Info().Int("count", len(seedTasks)).Msg("Demo tasks seeded")
}

func seedAdmin(ctx context.Context, pool *pgxpool.Pool, passwordHash string) error {
	_, err := pool.Exec(ctx, `
		INSERT INTO users (username, name, password_hash, is_admin, is_teacher)
		VALUES ('admin', 'Administrator', $1, TRUE, FALSE)
		ON CONFLICT (username) DO NOTHING
	`, passwordHash)
	return err
}

func seedTask(ctx context.Context, pool *pgxpool.Pool, t model.Task) error {
	_, err := pool.Exec(ctx, `
		INSERT INTO tasks (id, description, test_data, expected_output, hidden_test_data, hidden_expected_output, point_value, practicable)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`, t.ID, t.Description, t.TestData, t.ExpectedOutput, t.HiddenTestData, t.HiddenExpectedOutput, t.PointValue, t.Practicable)
	return err
}
