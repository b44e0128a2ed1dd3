// 向本地记录存储写入演示数据
//
// 只支持 gorm 与 badger 两种本地后端，数据来自 scripts/demo_data.yaml。
//
// 用法: go run scripts/seed_demo.go

package main

import (
	"context"
	"fmt"
	"learning_dashboard_backend/internal/config"
	"learning_dashboard_backend/internal/model"
	"learning_dashboard_backend/internal/repository"
	"learning_dashboard_backend/internal/service"
	"learning_dashboard_backend/pkg/database"
	"learning_dashboard_backend/pkg/logger"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type demoData struct {
	Activities []struct {
		DaysAgo int                  `yaml:"days_ago"`
		Types   []model.ActivityType `yaml:"types"`
	} `yaml:"activities"`
	Quizzes []struct {
		Subject  string `yaml:"subject"`
		Branch   string `yaml:"branch"`
		Semester string `yaml:"semester"`
		DaysAgo  int    `yaml:"days_ago"`
		Answers  []struct {
			Topic      string           `yaml:"topic"`
			Difficulty model.Difficulty `yaml:"difficulty"`
			Total      int              `yaml:"total"`
			Correct    int              `yaml:"correct"`
			Seconds    float64          `yaml:"seconds"`
		} `yaml:"answers"`
	} `yaml:"quizzes"`
}

func openStore(cfg *config.Config) (repository.RecordStore, func(), error) {
	switch cfg.Store.Backend {
	case "gorm":
		db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewGormRecordStore(db), func() {}, nil
	case "badger":
		db, err := database.InitBadger(&cfg.Badger)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewBadgerRecordStore(db), func() { db.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("seed_demo 不支持 %q 后端", cfg.Store.Backend)
	}
}

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}
	logger.InitLogger(cfg)

	raw, err := os.ReadFile("scripts/demo_data.yaml")
	if err != nil {
		log.Fatalf("无法读取演示数据: %v", err)
	}
	var data demoData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		log.Fatalf("解析演示数据失败: %v", err)
	}

	store, closeStore, err := openStore(cfg)
	if err != nil {
		log.Fatalf("打开记录存储失败: %v", err)
	}
	defer closeStore()

	ctx := context.Background()
	now := time.Now()
	activities := service.NewActivityService(repository.NewActivityRepository(store), nil, cfg.Analytics.Location())
	quizzes := service.NewQuizResultService(repository.NewQuizResultRepository(store), nil)

	for _, a := range data.Activities {
		day := now.AddDate(0, 0, -a.DaysAgo)
		activities.Now = func() time.Time { return day }
		for _, kind := range a.Types {
			if _, err := activities.RecordActivity(ctx, kind, nil); err != nil {
				log.Fatalf("写入活动失败: %v", err)
			}
		}
	}

	for _, q := range data.Quizzes {
		completedAt := now.AddDate(0, 0, -q.DaysAgo)
		draft := &model.QuizResultDraft{
			QuizID:      fmt.Sprintf("demo-%s-%d", q.Subject, q.DaysAgo),
			Branch:      q.Branch,
			Semester:    q.Semester,
			Subject:     q.Subject,
			CompletedAt: &completedAt,
		}
		for _, a := range q.Answers {
			for i := 0; i < a.Total; i++ {
				draft.Answers = append(draft.Answers, model.QuizAnswer{
					QID:        fmt.Sprintf("%s-%d", a.Topic, i),
					IsCorrect:  i < a.Correct,
					TimeTaken:  a.Seconds,
					Topic:      a.Topic,
					Difficulty: a.Difficulty,
					Subject:    q.Subject,
				})
			}
		}
		if _, err := quizzes.SaveQuizResult(ctx, draft); err != nil {
			log.Fatalf("写入测验结果失败: %v", err)
		}
	}

	log.Printf("完成！写入 %d 组活动、%d 条测验结果", len(data.Activities), len(data.Quizzes))
}
