package database

// Схема используется и при автосоздании таблиц, и в cmd/db_init
const (
	CreateRunsTableSQL = `CREATE TABLE IF NOT EXISTS analysis_runs (
		id INT AUTO_INCREMENT PRIMARY KEY,
		run_uuid CHAR(36) NOT NULL UNIQUE,
		video_path VARCHAR(512) NOT NULL,
		width INT,
		height INT,
		fps DOUBLE,
		frame_count INT,
		frames_read INT,
		solved BOOLEAN DEFAULT FALSE,
		solve_timestamp DOUBLE NULL,
		solve_frame INT NULL,
		frame_image LONGBLOB,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`

	CreateChangesTableSQL = `CREATE TABLE IF NOT EXISTS row_changes (
		id INT AUTO_INCREMENT PRIMARY KEY,
		run_id INT NOT NULL,
		frame_index INT NOT NULL,
		ts DOUBLE NOT NULL,
		row_index INT NOT NULL,
		old_full INT NULL,
		old_partial INT NULL,
		new_full INT NOT NULL,
		new_partial INT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (run_id) REFERENCES analysis_runs(id) ON DELETE CASCADE
	)`
)
