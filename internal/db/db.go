package db

import (
	"log"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Connect opens a gorm connection for the configured store driver.
// Fatal on failure: the process is useless without its database.
func Connect(driver, dsn string) *gorm.DB {
	var dial gorm.Dialector
	switch driver {
	case "sqlite":
		dial = gormsqlite.Open(dsn)
	default:
		dial = mysql.Open(dsn)
	}

	gdb, err := gorm.Open(dial, &gorm.Config{})
	if err != nil {
		log.Fatalf("db connect (%s): %v", driver, err)
	}
	return gdb
}
