// crm/errors.go
package crm

import "errors"

// 定义公共错误变量
var (
	ErrContactNotFound = errors.New("contact not found")
	ErrUpstream        = errors.New("crm upstream error")
	ErrMissingIdentity = errors.New("contact identity is required")
	ErrEmptyTagSets    = errors.New("add and remove tag sets are both empty")
)

// IsValidationError 判断错误是否属于调用方参数问题
func IsValidationError(err error) bool {
	return errors.Is(err, ErrMissingIdentity) || errors.Is(err, ErrEmptyTagSets)
}
