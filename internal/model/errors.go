package model

import "errors"

// Классы ошибок ядра. Конкретные ошибки оборачивают их через fmt.Errorf("%w: ...")
// и проверяются вызывающим кодом через errors.Is.
var (
	// ErrValidation — некорректный ввод пользователя (пустое имя, число задач вне диапазона и т.п.)
	ErrValidation = errors.New("validation error")
	// ErrPrecondition — переход жизненного цикла запрошен до выполнения его условия
	ErrPrecondition = errors.New("precondition failed")
	// ErrInvalidTransition — переход не определён для текущего статуса проекта
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrNotFound — проект, задача или расход с указанным id не существует
	ErrNotFound = errors.New("not found")
)
