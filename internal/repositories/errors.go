// Package repositories はデータベース操作を行うリポジトリを提供します。
package repositories

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	ErrTodoNotFound       = errors.New("todo not found")
	ErrTodoForbidden      = errors.New("todo access denied")
	ErrDuplicateEmail     = errors.New("duplicate email")
	ErrUserNotFound       = errors.New("user not found")
	ErrResetTokenNotFound = errors.New("reset token not found")
)

// isDuplicateKey は一意制約違反かどうかを判定します。
func isDuplicateKey(err error) bool {
	// MySQLの重複エントリーエラーコード1062
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}
