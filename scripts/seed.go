// Command seed fills a database with demo students, attendance and test
// results. It reads the same configuration as the server.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"coachdesk/internal/app"
	"coachdesk/internal/config"
	"coachdesk/internal/handlers"
	"coachdesk/internal/services"
)

func main() {
	configPath := flag.String("config", "", "config file path (YAML)")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if err := run(*configPath); err != nil {
		slog.Error("seeding failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	a, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	return seed(context.Background(), a.Services)
}

func seed(ctx context.Context, svc handlers.Services) error {
	roster := []services.CreateStudentInput{
		{Name: "Asha Patil", Email: "asha@example.com", Phone: "9845000001", SchoolName: "Vidya Mandir", ClassLevel: "7th"},
		{Name: "Ravi Kulkarni", Email: "ravi@example.com", Phone: "9845000002", SchoolName: "Vidya Mandir", ClassLevel: "7th"},
		{Name: "Meera Joshi", Email: "meera@example.com", Phone: "9845000003", SchoolName: "Sharada School", ClassLevel: "8th"},
	}

	var (
		attendance []services.AttendanceEntry
		results    []services.ResultEntry
	)
	for i, in := range roster {
		created, err := svc.Students.CreateStudent(ctx, in)
		if err != nil {
			return err
		}
		slog.Info("student created",
			"admission_number", created.Student.AdmissionNumber,
			"username", created.Username,
			"password", created.Password)

		attendance = append(attendance, services.AttendanceEntry{StudentID: created.Student.ID, Present: i%2 == 0})
		if in.ClassLevel == "7th" {
			results = append(results, services.ResultEntry{StudentID: created.Student.ID, MarksObtained: float64(38 + 5*i)})
		}
	}

	if err := svc.Attendance.MarkAttendance(ctx, "2024-07-01", attendance); err != nil {
		return err
	}

	test, err := svc.Tests.CreateTest(ctx, services.CreateTestInput{
		Name: "Unit Test 1", Subject: "Maths", ClassLevel: "7th", Date: "2024-07-05", MaxMarks: 50,
	})
	if err != nil {
		return err
	}
	if err := svc.Tests.RecordResults(ctx, test.ID, results); err != nil {
		return err
	}

	path, err := svc.Reports.GenerateTestResultsPDF(ctx, test.ID)
	if err != nil {
		return err
	}
	slog.Info("results sheet generated", "test_id", test.ID, "path", path)

	return nil
}
