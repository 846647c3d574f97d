package models

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// refWire is the on-wire shape of a Ref. The kind parameter is not part of it.
type refWire struct {
	ID    EntityID `json:"id" yaml:"id"`
	Alias *string  `json:"alias,omitempty" yaml:"alias,omitempty"`
}

type queryWire struct {
	ID    *EntityID `json:"id,omitempty" yaml:"id,omitempty"`
	Alias *string   `json:"alias,omitempty" yaml:"alias,omitempty"`
}

func (r Ref[T]) wire() refWire {
	w := refWire{ID: r.ID}
	if r.named {
		alias := r.alias
		w.Alias = &alias
	}
	return w
}

func (r *Ref[T]) fromWire(w refWire) {
	*r = NewRef[T](w.ID)
	if w.Alias != nil {
		*r = r.WithAlias(*w.Alias)
	}
}

func (r Ref[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.wire())
}

func (r *Ref[T]) UnmarshalJSON(data []byte) error {
	var w refWire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("decode ref: %w", err)
	}
	r.fromWire(w)
	return nil
}

func (r Ref[T]) MarshalYAML() (any, error) {
	return r.wire(), nil
}

func (r *Ref[T]) UnmarshalYAML(node *yaml.Node) error {
	var w refWire
	if err := node.Decode(&w); err != nil {
		return fmt.Errorf("decode ref: %w", err)
	}
	r.fromWire(w)
	return nil
}

func (q Query[T]) wire() queryWire {
	if q.kind == queryByAlias {
		alias := q.alias
		return queryWire{Alias: &alias}
	}
	id := q.id
	return queryWire{ID: &id}
}

func (q *Query[T]) fromWire(w queryWire) error {
	switch {
	case w.ID != nil && w.Alias == nil:
		*q = ByID[T](*w.ID)
	case w.Alias != nil && w.ID == nil:
		*q = ByAlias[T](*w.Alias)
	default:
		return ErrInvalidQuery
	}
	return nil
}

func (q Query[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(q.wire())
}

func (q *Query[T]) UnmarshalJSON(data []byte) error {
	var w queryWire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("decode query: %w", err)
	}
	return q.fromWire(w)
}

func (q Query[T]) MarshalYAML() (any, error) {
	return q.wire(), nil
}

func (q *Query[T]) UnmarshalYAML(node *yaml.Node) error {
	var w queryWire
	if err := node.Decode(&w); err != nil {
		return fmt.Errorf("decode query: %w", err)
	}
	return q.fromWire(w)
}
