package database

import (
	"database/sql"
	"fmt"
	"net"
	"sync"

	"wordlewatch/internal/config"
	"wordlewatch/internal/logger"

	"github.com/go-sql-driver/mysql"
)

// DSN строка подключения; withName == false нужен для db_init, когда базы еще нет
func DSN(cfg config.Database, withName bool) string {
	c := mysql.NewConfig()
	c.User = cfg.User
	c.Passwd = cfg.Password
	c.Net = "tcp"
	c.Addr = net.JoinHostPort(cfg.Host, cfg.Port)
	c.ParseTime = true
	if withName {
		c.DBName = cfg.Name
	}
	return c.FormatDSN()
}

// Open подключается к MySQL и проверяет соединение
func Open(cfg config.Database) (*sql.DB, error) {
	db, err := sql.Open("mysql", DSN(cfg, true))
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к базе данных: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ошибка проверки подключения к базе данных: %v", err)
	}
	return db, nil
}

// DatabaseManager содержит функции для работы с базой данных
type DatabaseManager struct {
	db     *sql.DB
	logger *logger.LoggerManager
	wg     sync.WaitGroup // для ожидания завершения асинхронных операций
}

// NewDatabaseManager создает новый экземпляр DatabaseManager
func NewDatabaseManager(db *sql.DB, loggerManager *logger.LoggerManager) *DatabaseManager {
	return &DatabaseManager{
		db:     db,
		logger: loggerManager,
	}
}

// EnsureSchema создает таблицы, если их нет
func (h *DatabaseManager) EnsureSchema() error {
	for _, q := range []string{CreateRunsTableSQL, CreateChangesTableSQL} {
		if _, err := h.db.Exec(q); err != nil {
			return fmt.Errorf("ошибка создания таблицы: %v", err)
		}
	}
	return nil
}

// SaveRun сохраняет прогон, изменения строк пишутся асинхронно одной транзакцией
func (h *DatabaseManager) SaveRun(run *RunRecord, cfg *config.Config) (int64, error) {
	// Проверяем настройку сохранения в БД
	if cfg.SaveToDB != 1 {
		h.logger.Info("Сохранение в БД отключено (save_to_db = %d)", cfg.SaveToDB)
		return 0, nil
	}

	if err := h.EnsureSchema(); err != nil {
		return 0, err
	}

	insertSQL := `INSERT INTO analysis_runs (run_uuid, video_path, width, height, fps, frame_count, frames_read, solved, solve_timestamp, solve_frame, frame_image) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := h.db.Exec(insertSQL, run.RunUUID, run.VideoPath, run.Width, run.Height, run.FPS, run.FrameCount,
		run.FramesRead, run.Solved, run.SolveTimestamp, run.SolveFrame, run.FrameImage)
	if err != nil {
		return 0, fmt.Errorf("ошибка вставки данных: %v", err)
	}

	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("ошибка получения ID записи: %v", err)
	}
	run.ID = runID
	h.logger.Info("✅ Прогон %s сохранен с ID: %d", run.RunUUID, runID)

	if len(run.Changes) == 0 {
		h.logger.Info("⚠️ Изменений строк нет, пропускаем сохранение row_changes")
		return runID, nil
	}

	h.logger.Info("🔧 Запускаем асинхронное сохранение %d изменений для прогона ID: %d", len(run.Changes), runID)
	h.wg.Add(1)
	go func(id int64, changes []RowChange) {
		defer h.wg.Done()
		if err := SaveChangesBatch(h.db, id, changes); err != nil {
			h.logger.LogError(err, "Ошибка асинхронного сохранения изменений строк")
		} else {
			h.logger.Info("✅ Изменения строк сохранены асинхронно для прогона ID: %d", id)
		}
	}(runID, run.Changes)

	return runID, nil
}

// SaveChangesBatch вставляет изменения строк в одной транзакции
func SaveChangesBatch(db *sql.DB, runID int64, changes []RowChange) (err error) {
	if len(changes) == 0 {
		return nil
	}

	// Начинаем транзакцию для batch обработки
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %v", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	insertSQL := `INSERT INTO row_changes (run_id, frame_index, ts, row_index, old_full, old_partial, new_full, new_partial) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	stmt, err := tx.Prepare(insertSQL)
	if err != nil {
		return fmt.Errorf("ошибка подготовки запроса: %v", err)
	}
	defer stmt.Close()

	for _, c := range changes {
		_, err = stmt.Exec(runID, c.FrameIndex, c.Timestamp, c.Row, c.OldFull, c.OldPartial, c.NewFull, c.NewPartial)
		if err != nil {
			return fmt.Errorf("ошибка вставки изменения строки: %v", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("ошибка подтверждения транзакции: %v", err)
	}
	return nil
}

// WaitForAsyncOperations ожидает завершения всех асинхронных операций сохранения
func (h *DatabaseManager) WaitForAsyncOperations() {
	h.logger.Info("⏳ Ожидаем завершения асинхронных операций сохранения...")
	h.wg.Wait()
	h.logger.Info("✅ Все асинхронные операции сохранения завершены")
}

// CountRuns количество сохраненных прогонов; solvedOnly оставляет только решенные
func CountRuns(db *sql.DB, solvedOnly bool) (int, error) {
	q := "SELECT COUNT(*) FROM analysis_runs"
	if solvedOnly {
		q += " WHERE solved = TRUE"
	}
	var n int
	if err := db.QueryRow(q).Scan(&n); err != nil {
		return 0, fmt.Errorf("ошибка подсчета прогонов: %v", err)
	}
	return n, nil
}

// ListRuns страница прогонов, новые первыми
func ListRuns(db *sql.DB, solvedOnly bool, limit, offset int) ([]RunRecord, error) {
	q := `SELECT id, run_uuid, video_path, width, height, fps, frame_count, frames_read, solved, solve_timestamp, solve_frame, frame_image, created_at FROM analysis_runs`
	if solvedOnly {
		q += " WHERE solved = TRUE"
	}
	q += " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"

	rows, err := db.Query(q, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения прогонов: %v", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.ID, &r.RunUUID, &r.VideoPath, &r.Width, &r.Height, &r.FPS, &r.FrameCount, &r.FramesRead,
			&r.Solved, &r.SolveTimestamp, &r.SolveFrame, &r.FrameImage, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка чтения строки прогона: %v", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunChanges изменения строк прогона в порядке кадров
func RunChanges(db *sql.DB, runID int64) ([]RowChange, error) {
	rows, err := db.Query(`SELECT id, run_id, frame_index, ts, row_index, old_full, old_partial, new_full, new_partial, created_at
		FROM row_changes WHERE run_id = ? ORDER BY frame_index, row_index`, runID)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения изменений: %v", err)
	}
	defer rows.Close()

	var changes []RowChange
	for rows.Next() {
		var c RowChange
		if err := rows.Scan(&c.ID, &c.RunID, &c.FrameIndex, &c.Timestamp, &c.Row, &c.OldFull, &c.OldPartial,
			&c.NewFull, &c.NewPartial, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка чтения изменения: %v", err)
		}
		changes = append(changes, c)
	}
	return changes, rows.Err()
}

// DeleteRun удаляет прогон; изменения строк удаляются каскадом
func DeleteRun(db *sql.DB, runID int64) (bool, error) {
	res, err := db.Exec("DELETE FROM analysis_runs WHERE id = ?", runID)
	if err != nil {
		return false, fmt.Errorf("ошибка удаления прогона: %v", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("ошибка удаления прогона: %v", err)
	}
	return n > 0, nil
}
