package utils

import (
	"context"
	"strings"

	"github.com/gallagherpc/deals_backend/config"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// reuse the gin binding tags so direct model calls enforce the same rules
	v.SetTagName("binding")
	return v
}

// ValidateStruct runs the shared validator over an input struct; model
// create funcs call it so callers that bypass the HTTP layer get the same
// required-field checks as JSON binding.
func ValidateStruct(input any) error {
	return validate.Struct(input)
}

// ValidateResourceId checks that id exists within the organization,
// returns ErrorRecordNotFound otherwise.
func ValidateResourceId[T any](ctx context.Context, organizationId string, id interface{}) error {
	count, err := ResourceCountWhere[T](ctx, organizationId, "id = ?", id)
	if err != nil {
		return err
	}
	if count <= 0 {
		return ErrorRecordNotFound
	}
	return nil
}

func ResourceCountWhere[T any](ctx context.Context, organizationId string, cond string, values ...interface{}) (int64, error) {
	var model T
	var count int64
	db := config.GetDB()
	err := db.WithContext(ctx).Model(&model).
		Where("organization_id = ?", organizationId).
		Where(cond, values...).
		Count(&count).Error
	return count, err
}

// IsMissingTableError classifies the MySQL "relation does not exist"
// condition for optional tables. Anything else must propagate unchanged.
func IsMissingTableError(err error, tableName string) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, strings.ToLower(tableName)) {
		return false
	}
	return strings.Contains(msg, "doesn't exist") || strings.Contains(msg, "does not exist")
}
