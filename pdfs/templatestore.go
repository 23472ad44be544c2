package pdfs

import "sort"

type TemplateStore[T any] struct {
	templates map[string]T
}

func NewTemplateStore[T any]() *TemplateStore[T] {
	return &TemplateStore[T]{templates: make(map[string]T)}
}

func (s *TemplateStore[T]) Store(key string, template T) {
	s.templates[key] = template
}

func (s *TemplateStore[T]) Get(key string) (T, bool) {
	t, ok := s.templates[key]
	return t, ok
}

func (s *TemplateStore[T]) Len() int {
	return len(s.templates)
}

// Keys returns the stored keys in sorted order.
func (s *TemplateStore[T]) Keys() []string {
	keys := make([]string, 0, len(s.templates))
	for k := range s.templates {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
