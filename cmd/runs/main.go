package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"wordlewatch/internal/config"
	"wordlewatch/internal/database"

	"github.com/joho/godotenv"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Использование: go run ./cmd/runs <команда> [аргументы]")
		fmt.Println("Команды:")
		fmt.Println("  list [N] - последние N прогонов (по умолчанию 10)")
		fmt.Println("  events <id> - изменения строк прогона")
		fmt.Println("  delete <id> - удалить прогон")
		return
	}

	_ = godotenv.Load()
	c, err := config.InitConfig(os.Getenv("WORDLEWATCH_CONFIG"))
	if err != nil {
		log.Fatalf("Ошибка чтения конфигурации: %v", err)
	}

	db, err := database.Open(c.Database)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer db.Close()

	command := os.Args[1]

	switch command {
	case "list":
		limit := 10
		if len(os.Args) > 2 {
			if n, err := strconv.Atoi(os.Args[2]); err == nil && n > 0 {
				limit = n
			}
		}
		runs, err := database.ListRuns(db, false, limit, 0)
		if err != nil {
			log.Fatalf("Ошибка получения данных: %v", err)
		}
		for _, r := range runs {
			result := "не решено"
			if r.Solved {
				result = fmt.Sprintf("решено за %.2f с (кадр %d)", r.SolveTimestamp.Float64, r.SolveFrame.Int64)
			}
			fmt.Printf("#%d %s %s: %s\n", r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.VideoPath, result)
		}

	case "events":
		id := runID()
		changes, err := database.RunChanges(db, id)
		if err != nil {
			log.Fatalf("Ошибка получения данных: %v", err)
		}
		fmt.Printf("Прогон #%d, изменений: %d\n", id, len(changes))
		for _, ch := range changes {
			fmt.Printf("  Time %.2fs - Row %d: %d green, %d yellow\n", ch.Timestamp, ch.Row+1, ch.NewFull, ch.NewPartial)
		}

	case "delete":
		id := runID()
		ok, err := database.DeleteRun(db, id)
		if err != nil {
			log.Fatalf("%v", err)
		}
		if !ok {
			fmt.Printf("Прогон #%d не найден\n", id)
			return
		}
		fmt.Printf("Прогон #%d удален\n", id)

	default:
		fmt.Printf("Неизвестная команда: %s\n", command)
	}
}

func runID() int64 {
	if len(os.Args) < 3 {
		log.Fatalf("Ошибка: укажите id прогона")
	}
	id, err := strconv.ParseInt(os.Args[2], 10, 64)
	if err != nil {
		log.Fatalf("Ошибка: некорректный id %q", os.Args[2])
	}
	return id
}
