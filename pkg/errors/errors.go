package errors

import (
	"errors"
	"fmt"
)

var (
	ErrConfigNotFound  = errors.New("config not found")
	ErrConfigInvalid   = errors.New("invalid configuration")
	ErrFileNotFound    = errors.New("file not found")
	ErrInvalidFilePath = errors.New("invalid file path")

	// Per-message failures: the row is skipped, the stream continues.
	// 单条消息失败：跳过该行，继续处理。
	ErrFieldNotFound = errors.New("field not found")
	ErrCoercion      = errors.New("value coercion failed")
	ErrExpression    = errors.New("expression error")

	// Per-file failure: the rest of the file is skipped.
	// 单文件失败：跳过该文件剩余部分。
	ErrContainerRead = errors.New("container read failed")

	ErrNonNumeric = errors.New("non-numeric value")
	ErrCanceled   = errors.New("operation canceled")
)

func NewFileError(path string, reason error) error {
	return fmt.Errorf("%w: %s: %v", ErrFileNotFound, path, reason)
}

func NewConfigError(field string, value interface{}) error {
	return fmt.Errorf("%w: field=%s value=%v", ErrConfigInvalid, field, value)
}

// NewTaskConfigError reports a configuration problem scoped to one analysis task.
// NewTaskConfigError 报告仅影响单个分析任务的配置问题。
func NewTaskConfigError(taskID string, reason string) error {
	return fmt.Errorf("%w: task=%s: %s", ErrConfigInvalid, taskID, reason)
}

func NewFieldNotFoundError(path string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrFieldNotFound, path, reason)
}

func NewCoercionError(typeName string, value interface{}) error {
	return fmt.Errorf("%w: cannot convert %v (%T) to %s", ErrCoercion, value, value, typeName)
}

func NewExpressionError(reason string) error {
	return fmt.Errorf("%w: %s", ErrExpression, reason)
}

func NewContainerReadError(path string, cause error) error {
	return fmt.Errorf("%w: %s: %v", ErrContainerRead, path, cause)
}

func NewNonNumericError(column string, value interface{}) error {
	return fmt.Errorf("%w: column=%s value=%v (%T)", ErrNonNumeric, column, value, value)
}
