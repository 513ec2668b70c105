// notify/errors.go
package notify

import "errors"

// 定义公共错误变量
var (
	ErrInvalidEventKind = errors.New("invalid event kind")
	ErrMissingActor     = errors.New("actor id is required")
	ErrMissingSubject   = errors.New("subject id is required when no explicit targets")
)

// IsValidationError 判断错误是否属于调用方参数问题
// HTTP 层据此决定返回 400 还是 500
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidEventKind) ||
		errors.Is(err, ErrMissingActor) ||
		errors.Is(err, ErrMissingSubject)
}
