package util
import (
	"fmt"
	"time"
	"path/filepath"
	"database/sql"
	"github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	_ "github.com/ncruces/go-sqlite3/vfs/xts"

	"stegbox/cryptography"
)

/*
 * a small database of received files. every upload the server accepts
 * lands here together with the result of watermark detection.
 */
type DB struct {
	db		*sql.DB
	rowsLimit	uint
}

type FileInfo struct {
	ID			int64
	Filename		string
	UploadTime		time.Time
	HasSteganography	bool
	HiddenMessage		string
	Hash			string
	// same content was already in the table, not persisted
	Duplicate		bool
}

func ConnectDB( filename, password string, rowsLimit uint ) (*DB, error) {

	query := "?_pragma=busy_timeout(10000)"
	if password != "" {
		query += fmt.Sprintf("&vfs=xts&_pragma=textkey(%q)&_pragma=temp_store(memory)", password)
	} else {
		query += "&_pragma=journal_mode(wal)"
	}
	connector, err := (&driver.SQLite{}).OpenConnector( "file:" + filepath.Clean( filename ) + query )
	if err != nil {
		return nil, fmt.Errorf("Failed to open database: %w", err)
	}
	final := &DB {
		sql.OpenDB( connector ),
		rowsLimit,
	}
	if err = final.InitDB(); err != nil {
		final.Close()
		return nil, fmt.Errorf("Failed to init database: %w", err)
	}
	return final, nil
}

func(db *DB) Close() error {
	return db.db.Close()
}

func(db *DB) InitDB() error {
	sqlStmt := `create table if not exists file_info(
		id integer not null primary key autoincrement,
		filename text not null,
		upload_time integer not null,
		has_steganography integer not null default 0,
		hidden_message text,
		hash text not null
	);`
	if _, err := db.db.Exec( sqlStmt ); err != nil {
		return err
	}
	_, err := db.db.Exec(`create index if not exists hashIdx on file_info(hash);`)
	return err
}

// stores info about the received file and drops the oldest rows
// once the limit is passed. returns the id of the new row.
func(db *DB) SaveFileInfo( filename string, data []byte, hasStegano bool, message string ) (int64, error) {

	var hidden sql.NullString
	if hasStegano {
		hidden = sql.NullString{ String: message, Valid: true }
	}
	res, err := db.db.Exec(
		`insert into file_info(filename, upload_time, has_steganography, hidden_message, hash) values(?, ?, ?, ?, ?);`,
		filename, time.Now().Unix(), hasStegano, hidden, cryptography.Hash( data ),
	)
	if err != nil {
		return -1, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return -1, err
	}
	if db.rowsLimit > 0 {
		_, err = db.db.Exec(
			`delete from file_info where id not in (select id from file_info order by id desc limit ?);`,
			int64( db.rowsLimit ),
		)
	}
	return id, err
}

// newest first. limit <= 0 lists everything.
func(db *DB) ListFiles( limit int ) ([]FileInfo, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.db.Query(
		`select id, filename, upload_time, has_steganography, hidden_message, hash from file_info order by id desc limit ?;`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []FileInfo{}
	for rows.Next() {
		var info FileInfo
		var uploaded int64
		var hidden sql.NullString
		err = rows.Scan( &info.ID, &info.Filename, &uploaded, &info.HasSteganography, &hidden, &info.Hash )
		if err != nil {
			return nil, err
		}
		info.UploadTime = time.Unix( uploaded, 0 )
		info.HiddenMessage = hidden.String
		result = append( result, info )
	}
	return result, rows.Err()
}

// checks if the same content was already received
func(db *DB) IsInDB( data []byte ) (bool, error) {
	var exists bool
	err := db.db.QueryRow(
		`select exists(select 1 from file_info where hash = ?);`,
		cryptography.Hash( data ),
	).Scan( &exists )
	return exists, err
}

func(db *DB) Count() (int, error) {
	var amount int
	if err := db.db.QueryRow(`select count(*) from file_info;`).Scan( &amount ); err != nil {
		return -1, err
	}
	return amount, nil
}
