package aggregates

import (
	"gorm.io/gorm"

	"github.com/yungbote/learnqueue-backend/internal/platform/dbctx"
)

// CAS is a single-statement compare-and-set: rows of Model matching every Expect
// column receive Set.
type CAS struct {
	Model  any
	Expect map[string]any
	Set    map[string]any
}

// CASGuard applies CAS updates inside the caller's transaction, or on db when there is none.
type CASGuard struct {
	db *gorm.DB
}

func NewCASGuard(db *gorm.DB) CASGuard {
	return CASGuard{db: db}
}

// Swap reports whether any row matched. false means another writer changed the row first.
func (g CASGuard) Swap(dbc dbctx.Context, c CAS) (bool, error) {
	if c.Model == nil || len(c.Expect) == 0 || len(c.Set) == 0 {
		return false, ValidationError("cas needs a model, expected columns and updates")
	}
	db := dbc.Tx
	if db == nil {
		db = g.db
	}
	if db == nil {
		return false, ValidationError("cas has no database handle")
	}
	res := db.WithContext(dbc.Ctx).Model(c.Model).Where(c.Expect).Updates(c.Set)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// MustSwap is Swap with a lost race reported as a conflict carrying msg.
func (g CASGuard) MustSwap(dbc dbctx.Context, c CAS, msg string) error {
	ok, err := g.Swap(dbc, c)
	if err != nil {
		return err
	}
	if !ok {
		return ConflictError(msg)
	}
	return nil
}
