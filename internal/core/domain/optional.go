package domain

import (
	"bytes"
	"encoding/json"
)

// Opt - явная обертка "есть значение / нет значения".
// Отсутствие поля означает "неизвестно", а не ноль или пустую строку.
type Opt[T any] struct {
	value T
	ok    bool
}

// Some создает заполненное значение
func Some[T any](v T) Opt[T] {
	return Opt[T]{value: v, ok: true}
}

// None создает пустое значение
func None[T any]() Opt[T] {
	return Opt[T]{}
}

// FromPtr переводит nullable-указатель (например, из pgx) в Opt
func FromPtr[T any](p *T) Opt[T] {
	if p == nil {
		return None[T]()
	}
	return Some(*p)
}

func (o Opt[T]) Get() (T, bool) {
	return o.value, o.ok
}

func (o Opt[T]) IsPresent() bool {
	return o.ok
}

// OrElse возвращает значение или fallback, если его нет
func (o Opt[T]) OrElse(fallback T) T {
	if o.ok {
		return o.value
	}
	return fallback
}

// Ptr возвращает указатель на копию значения или nil. Удобно для аргументов SQL.
func (o Opt[T]) Ptr() *T {
	if !o.ok {
		return nil
	}
	v := o.value
	return &v
}

// Or возвращает o, если значение есть, иначе other
func (o Opt[T]) Or(other Opt[T]) Opt[T] {
	if o.ok {
		return o
	}
	return other
}

func (o Opt[T]) MarshalJSON() ([]byte, error) {
	if !o.ok {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

func (o *Opt[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = None[T]()
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}

// PresentAndEqual - оба значения есть и равны.
// Отсутствие в любом из них означает "не совпало".
func PresentAndEqual[T comparable](a, b Opt[T]) bool {
	av, aok := a.Get()
	bv, bok := b.Get()
	return aok && bok && av == bv
}
