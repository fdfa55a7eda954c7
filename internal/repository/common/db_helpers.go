package common

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// GetByID - универсальная функция для получения сущности по ID
func GetByID[T any](ctx context.Context, db sqlx.QueryerContext, table string, id interface{}, notFoundErr error) (*T, error) {
	var entity T
	query := fmt.Sprintf("SELECT * FROM %s WHERE id = $1", table)

	if err := sqlx.GetContext(ctx, db, &entity, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFoundErr
		}
		return nil, fmt.Errorf("get by id from %s: %w", table, err)
	}

	return &entity, nil
}

// DeleteOwned удаляет строку только если она принадлежит владельцу.
// Возвращает notFoundErr, если ни одна строка не затронута.
func DeleteOwned(ctx context.Context, db sqlx.ExecerContext, table, ownerColumn string, id, ownerID interface{}, notFoundErr error) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1 AND %s = $2", table, ownerColumn)
	res, err := db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete from %s rows affected: %w", table, err)
	}
	if n == 0 {
		return notFoundErr
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// EscapeLike экранирует спецсимволы LIKE/ILIKE (\, %, _), чтобы пользовательский
// ввод сравнивался буквально. Экранирующий символ по умолчанию в PostgreSQL - обратный слеш.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// Placeholders собирает WHERE условия с позиционными аргументами $1, $2, ...
type Placeholders struct {
	conds []string
	args  []interface{}
}

// Add добавляет условие. Все символы ? в cond заменяются на очередной $N.
func (p *Placeholders) Add(cond string, arg interface{}) {
	p.args = append(p.args, arg)
	p.conds = append(p.conds, replaceMark(cond, fmt.Sprintf("$%d", len(p.args))))
}

// Arg добавляет аргумент без условия и возвращает его плейсхолдер (для LIMIT/OFFSET).
func (p *Placeholders) Arg(arg interface{}) string {
	p.args = append(p.args, arg)
	return fmt.Sprintf("$%d", len(p.args))
}

// Where возвращает " WHERE a AND b" или пустую строку.
func (p *Placeholders) Where() string {
	if len(p.conds) == 0 {
		return ""
	}
	out := " WHERE " + p.conds[0]
	for _, c := range p.conds[1:] {
		out += " AND " + c
	}
	return out
}

// Args возвращает накопленные аргументы.
func (p *Placeholders) Args() []interface{} {
	return p.args
}

func replaceMark(cond, ph string) string {
	return strings.ReplaceAll(cond, "?", ph)
}
