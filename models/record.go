// Copyright 2025 Raywall Malheiros de Souza
// Licensed under the Mozilla Public License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.mozilla.org/en-US/MPL/2.0/
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package models

import "encoding/json"

// Record is the shape shared by every collection: an assigned id and a
// validated name. Concrete kinds embed it.
type Record struct {
	ID     int    `json:"id"`
	Nombre string `json:"nombre" validate:"required,min=3"`
}

func (r *Record) GetID() int   { return r.ID }
func (r *Record) SetID(id int) { r.ID = id }

// UnmarshalJSON accepts "name" as an alias of "nombre" so clients written
// against either field name keep working.
func (r *Record) UnmarshalJSON(data []byte) error {
	var aux struct {
		ID     int     `json:"id"`
		Nombre *string `json:"nombre"`
		Name   *string `json:"name"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	r.ID = aux.ID
	switch {
	case aux.Nombre != nil:
		r.Nombre = *aux.Nombre
	case aux.Name != nil:
		r.Nombre = *aux.Name
	default:
		r.Nombre = ""
	}
	return nil
}

// Usuario is a user of the service.
type Usuario struct {
	Record
}

// Consola is a video game console.
type Consola struct {
	Record
}

// SeedUsuarios returns the users every fresh store starts with.
func SeedUsuarios() []Usuario {
	return []Usuario{
		{Record{ID: 1, Nombre: "Paola"}},
		{Record{ID: 2, Nombre: "Dora"}},
		{Record{ID: 3, Nombre: "Vanessa"}},
		{Record{ID: 4, Nombre: "Alondra"}},
	}
}

// SeedConsolas returns the consoles every fresh store starts with.
func SeedConsolas() []Consola {
	return []Consola{
		{Record{ID: 1, Nombre: "XBOX"}},
		{Record{ID: 2, Nombre: "PS5"}},
		{Record{ID: 3, Nombre: "Nintendo"}},
	}
}
