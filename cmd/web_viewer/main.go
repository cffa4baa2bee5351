package main

import (
	"database/sql"
	"encoding/base64"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"wordlewatch/internal/config"
	"wordlewatch/internal/database"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const resultsPerPage = 10

type PageData struct {
	Runs        []database.RunRecord
	CurrentPage int
	TotalPages  int
	TotalCount  int
	HasPrev     bool
	HasNext     bool
	PrevPage    int
	NextPage    int
	SolvedOnly  bool
}

// paginate возвращает номер страницы в допустимых пределах, число страниц и смещение
func paginate(totalCount, page, perPage int) (int, int, int) {
	totalPages := (totalCount + perPage - 1) / perPage
	if totalPages == 0 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	return page, totalPages, (page - 1) * perPage
}

func main() {
	_ = godotenv.Load()

	// Получаем порт из переменной окружения
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	host := os.Getenv("HOST")
	if host == "" {
		host = "0.0.0.0"
	}

	c, err := config.InitConfig(os.Getenv("WORDLEWATCH_CONFIG"))
	if err != nil {
		log.Fatalf("Ошибка чтения конфигурации: %v", err)
	}

	db, err := database.Open(c.Database)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer db.Close()

	log.Printf("Успешно подключились к базе данных %s на %s:%s", c.Database.Name, c.Database.Host, c.Database.Port)
	log.Printf("Запускаем сервер на %s:%s", host, port)

	http.Handle("/metrics", promhttp.HandlerFor(newRegistry(db), promhttp.HandlerOpts{}))
	http.HandleFunc("/", runsHandler(db))

	fmt.Printf("🚀 wordlewatch viewer запущен на порту %s\n", port)
	fmt.Printf("🌐 Откройте http://localhost:%s в браузере\n", port)

	if err := http.ListenAndServe(host+":"+port, nil); err != nil {
		log.Fatalf("Ошибка запуска сервера: %v", err)
	}
}

// newRegistry метрики по сохраненным прогонам, считаются при каждом запросе /metrics
func newRegistry(db *sql.DB) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	count := func(solvedOnly bool) func() float64 {
		return func() float64 {
			n, err := database.CountRuns(db, solvedOnly)
			if err != nil {
				log.Printf("Ошибка подсчета прогонов: %v", err)
				return 0
			}
			return float64(n)
		}
	}
	reg.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "wordlewatch", Name: "runs_stored",
			Help: "Analysis runs stored in the database.",
		}, count(false)),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "wordlewatch", Name: "runs_solved",
			Help: "Stored runs with a detected solve.",
		}, count(true)),
	)
	return reg
}

func runsHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := 1
		if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
			page = p
		}
		solvedOnly := r.URL.Query().Get("solved") == "1"

		totalCount, err := database.CountRuns(db, solvedOnly)
		if err != nil {
			http.Error(w, "DB error", 500)
			return
		}

		page, totalPages, offset := paginate(totalCount, page, resultsPerPage)

		runs, err := database.ListRuns(db, solvedOnly, resultsPerPage, offset)
		if err != nil {
			http.Error(w, "DB error", 500)
			return
		}

		// Загружаем изменения строк для каждого прогона
		for i := range runs {
			if changes, err := database.RunChanges(db, runs[i].ID); err == nil {
				runs[i].Changes = changes
			}
		}

		renderTemplate(w, PageData{
			Runs:        runs,
			CurrentPage: page,
			TotalPages:  totalPages,
			TotalCount:  totalCount,
			HasPrev:     page > 1,
			HasNext:     page < totalPages,
			PrevPage:    page - 1,
			NextPage:    page + 1,
			SolvedOnly:  solvedOnly,
		})
	}
}

var templateFuncs = template.FuncMap{
	"pngDataURL": func(data []byte) template.URL {
		return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(data))
	},
	"formatDateTime": func(t time.Time) string {
		return t.Local().Format("02.01.2006 15:04:05")
	},
	"formatSeconds": func(s float64) string {
		return fmt.Sprintf("%.2f s", s)
	},
	"rowNumber": func(row int) int {
		return row + 1
	},
	"oldState": func(c database.RowChange) string {
		if !c.OldFull.Valid {
			return "-"
		}
		return fmt.Sprintf("%d / %d", c.OldFull.Int64, c.OldPartial.Int64)
	},
	"sequence": func(current, total int) []int {
		var pages []int
		start := current - 2
		if start < 1 {
			start = 1
		}
		end := current + 2
		if end > total {
			end = total
		}
		for i := start; i <= end; i++ {
			pages = append(pages, i)
		}
		return pages
	},
}

func renderTemplate(w http.ResponseWriter, data PageData) {
	// Определяем путь к шаблонам
	templatePath := "templates/*.html"
	if _, err := os.Stat("templates"); os.IsNotExist(err) {
		// Если нет, пробуем относительный путь
		templatePath = "cmd/web_viewer/templates/*.html"
	}

	tmpl, err := template.New("layout").Funcs(templateFuncs).ParseGlob(templatePath)
	if err != nil {
		http.Error(w, "Template error: "+err.Error(), 500)
		return
	}

	if err := tmpl.ExecuteTemplate(w, "layout.html", data); err != nil {
		http.Error(w, "Template execution error: "+err.Error(), 500)
		return
	}
}
