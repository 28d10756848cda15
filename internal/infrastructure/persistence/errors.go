package persistence

import (
	"errors"

	"github.com/saleledger/backend/internal/domain/shared"
	"github.com/saleledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// translateError maps GORM errors onto domain errors. action names the failed
// operation in the persistence error message.
func translateError(err error, action string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.ErrAlreadyExists
	}
	var de *shared.DomainError
	if errors.As(err, &de) {
		return err
	}
	return shared.NewPersistenceError("failed to "+action, err)
}

// searchPattern builds a LIKE pattern over the folded search_name column
func searchPattern(search string) string {
	return "%" + models.FoldName(search) + "%"
}
