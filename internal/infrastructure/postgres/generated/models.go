package generated

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type Account struct {
	ID      int64          `json:"id"`
	Balance pgtype.Numeric `json:"balance"`
}
