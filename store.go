package main

import (
	"database/sql"
	"errors"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store keeps dumped HTTP responses in a local sqlite file so repeated
// searches can be replayed without hitting the provider.
type Store struct {
	db  *sql.DB
	log *log.Logger
}

const reqTable string = `
  CREATE TABLE IF NOT EXISTS reqdata (
      httpdata BLOB NOT NULL,
      hash TEXT NOT NULL,
      expiry INT NOT NULL
  )
`

func NewStore(filename string) (*Store, error) {
	logger := log.New(os.Stderr, "(store) ", log.LstdFlags)

	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite3", "file:"+filename)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(reqTable); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		db:  db,
		log: logger,
	}, nil
}

func (store *Store) Close() error {
	return store.db.Close()
}

func (store *Store) DeleteBefore(expiry int64) {
	_, err := store.db.Exec("DELETE FROM reqdata WHERE expiry < ?", expiry)
	if err != nil {
		store.log.Println("db:", err.Error())
	}
}

func (store *Store) GetResponse(hash string) ([]byte, bool) {
	row := store.db.QueryRow("SELECT httpdata FROM reqdata WHERE hash = ? AND expiry >= ?",
		hash,
		time.Now().Unix(),
	)
	var data []byte
	err := row.Scan(&data)
	if err == nil {
		return data, true
	}
	if !errors.Is(err, sql.ErrNoRows) {
		store.log.Println("db:", err.Error())
	}
	return nil, false
}

func (store *Store) StoreResponse(hash string, res []byte, expiry int64) {
	_, err := store.db.Exec("INSERT INTO reqdata VALUES (?,?,?)",
		res,
		hash,
		expiry,
	)
	if err != nil {
		store.log.Println("db:", err.Error())
	}
}
