package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/frahmantamala/task-management/internal/auth"
	departmentDatamodel "github.com/frahmantamala/task-management/internal/core/datamodel/department"
	evaluationDatamodel "github.com/frahmantamala/task-management/internal/core/datamodel/evaluation"
	taskDatamodel "github.com/frahmantamala/task-management/internal/core/datamodel/task"
	userDatamodel "github.com/frahmantamala/task-management/internal/core/datamodel/user"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

const seedPassword = "password123"

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample departments, users and tasks for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer sqlDB.Close()

		db, err := initGorm(sqlDB)
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		hash, err := auth.HashPassword(seedPassword, cfg.Security.BCryptCost)
		if err != nil {
			log.Fatalf("failed to hash seed password: %v", err)
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if clearData {
				if err := clearSeedData(tx); err != nil {
					return err
				}
				fmt.Println("Cleared existing data")
			}
			return seed(tx, hash)
		})
		if err != nil {
			log.Fatalf("seeding failed: %v", err)
		}

		fmt.Println("Seed data loaded; every seeded user logs in with password:", seedPassword)
	},
}

func clearSeedData(tx *gorm.DB) error {
	tables := []any{
		&evaluationDatamodel.Evaluation{},
		&taskDatamodel.TimeLog{},
		&taskDatamodel.History{},
		&taskDatamodel.Comment{},
		&taskDatamodel.Task{},
		&userDatamodel.User{},
		&departmentDatamodel.Department{},
	}
	for _, t := range tables {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(t).Error; err != nil {
			return fmt.Errorf("clear %T: %w", t, err)
		}
	}
	return nil
}

func seed(tx *gorm.DB, passwordHash string) error {
	departments := map[string]*departmentDatamodel.Department{}
	for _, d := range []struct{ code, name, parent string }{
		{"DEV", "개발본부", ""},
		{"BE", "백엔드팀", "DEV"},
		{"FE", "프론트엔드팀", "DEV"},
		{"PLN", "기획팀", ""},
	} {
		row := departmentDatamodel.Department{Code: d.code, Name: d.name}
		if d.parent != "" {
			row.ParentID = &departments[d.parent].ID
		}
		if err := tx.Where(departmentDatamodel.Department{Code: d.code}).FirstOrCreate(&row).Error; err != nil {
			return fmt.Errorf("seed department %s: %w", d.code, err)
		}
		departments[d.code] = &row
		fmt.Println("Seeded department:", d.name)
	}

	users := map[string]*userDatamodel.User{}
	for _, u := range []struct{ username, first, last, role, rank, dept string }{
		{"admin", "관리자", "", "ADMIN", "", ""},
		{"manager", "영희", "이", "MANAGER", "팀장", "BE"},
		{"kim", "철수", "김", "EMPLOYEE", "사원", "BE"},
		{"park", "민수", "박", "EMPLOYEE", "대리", "BE"},
		{"choi", "지은", "최", "EMPLOYEE", "사원", "FE"},
	} {
		row := userDatamodel.User{
			Username:     u.username,
			PasswordHash: passwordHash,
			FirstName:    u.first,
			LastName:     u.last,
			Email:        u.username + "@example.com",
			Role:         u.role,
			Rank:         u.rank,
			IsActive:     true,
		}
		if u.dept != "" {
			row.DepartmentID = &departments[u.dept].ID
		}
		if err := tx.Where(userDatamodel.User{Username: u.username}).FirstOrCreate(&row).Error; err != nil {
			return fmt.Errorf("seed user %s: %w", u.username, err)
		}
		users[u.username] = &row
		fmt.Println("Seeded user:", u.username)
	}

	var count int64
	if err := tx.Model(&taskDatamodel.Task{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		fmt.Println("Tasks already present; skipping task seed")
		return nil
	}

	today := time.Now().Truncate(24 * time.Hour)
	day := func(n int) *time.Time {
		t := today.AddDate(0, 0, n)
		return &t
	}
	for _, t := range []struct {
		title, status, priority, assignee, dept string
		start, due                              int
		estimate                                string
	}{
		{"로그인 API 개발", "DONE", "HIGH", "kim", "BE", -14, -7, "16"},
		{"결제 모듈 리팩터링", "IN_PROGRESS", "URGENT", "park", "BE", -5, 3, "24"},
		{"대시보드 화면 개선", "REVIEW", "MEDIUM", "choi", "FE", -3, 2, "8"},
		{"배포 파이프라인 점검", "TODO", "LOW", "kim", "BE", 1, 10, "4"},
		{"분기 보고서 작성", "HOLD", "MEDIUM", "park", "BE", -10, -1, "6"},
	} {
		row := taskDatamodel.Task{
			Title:          t.title,
			Status:         t.status,
			Priority:       t.priority,
			AssigneeID:     &users[t.assignee].ID,
			ReporterID:     &users["manager"].ID,
			DepartmentID:   &departments[t.dept].ID,
			StartDate:      day(t.start),
			DueDate:        day(t.due),
			EstimatedHours: decimal.NewNullDecimal(decimal.RequireFromString(t.estimate)),
		}
		if t.status == "DONE" {
			row.CompletedAt = day(t.due)
		}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("seed task %q: %w", t.title, err)
		}
		history := taskDatamodel.History{TaskID: row.ID, ChangedByID: row.ReporterID, NewStatus: t.status, Comment: "seed"}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}
		if t.status == "DONE" {
			eval := evaluationDatamodel.Evaluation{
				TaskID:           row.ID,
				EvaluatorID:      users["manager"].ID,
				Difficulty:       "중",
				PerformanceScore: 5,
				Feedback:         "일정 내 완료",
			}
			if err := tx.Create(&eval).Error; err != nil {
				return err
			}
		}
		fmt.Println("Seeded task:", t.title)
	}
	return nil
}
