package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"

	"wordlewatch/internal/config"
	"wordlewatch/internal/database"

	"github.com/joho/godotenv"
)

func main() {
	configPath := flag.String("config", "", "путь к config.yaml")
	drop := flag.Bool("drop", false, "удалить базу перед созданием")
	flag.Parse()

	_ = godotenv.Load()
	c, err := config.InitConfig(*configPath)
	if err != nil {
		log.Fatalf("Ошибка чтения конфигурации: %v", err)
	}
	name := c.Database.Name

	// Подключаемся к MySQL без указания базы
	db, err := sql.Open("mysql", database.DSN(c.Database, false))
	if err != nil {
		log.Fatalf("Ошибка подключения к MySQL: %v", err)
	}
	defer db.Close()

	if *drop {
		if _, err = db.Exec(fmt.Sprintf("DROP DATABASE IF EXISTS `%s`", name)); err != nil {
			log.Fatalf("Ошибка удаления базы: %v", err)
		}
		fmt.Printf("База данных %s удалена (если была)\n", name)
	}

	_, err = db.Exec(fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s` CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci", name))
	if err != nil {
		log.Fatalf("Ошибка создания базы: %v", err)
	}
	fmt.Printf("База данных %s создана\n", name)

	// Подключаемся к новой базе
	db2, err := sql.Open("mysql", database.DSN(c.Database, true))
	if err != nil {
		log.Fatalf("Ошибка подключения к новой базе: %v", err)
	}
	defer db2.Close()

	if _, err = db2.Exec(database.CreateRunsTableSQL); err != nil {
		log.Fatalf("Ошибка создания таблицы analysis_runs: %v", err)
	}
	fmt.Println("Таблица analysis_runs создана")

	if _, err = db2.Exec(database.CreateChangesTableSQL); err != nil {
		log.Fatalf("Ошибка создания таблицы row_changes: %v", err)
	}
	fmt.Println("Таблица row_changes создана")

	fmt.Println("Инициализация базы завершена!")
}
