package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Código SQLSTATE de violación de constraint único.
const uniqueViolationCode = "23505"

// isUniqueViolation detecta choques contra un constraint único, por ejemplo
// la clave natural (item_id, lot_number) de lots cuando dos recepciones crean
// el mismo lote a la vez. El motor lo traduce a domain.ErrDuplicate y decide
// si reintenta.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
