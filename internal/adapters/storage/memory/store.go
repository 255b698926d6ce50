package memory

import (
	"sort"
	"sync"

	"vet-clinic/internal/domain/appointments"
	"vet-clinic/internal/domain/document"
	"vet-clinic/internal/domain/owners"
	"vet-clinic/internal/domain/pets"
	"vet-clinic/internal/domain/stats"
)

// Store guarda las tres colecciones y sus documentos bajo un único RWMutex.
// Cada operación de escritura (cascadas, merges, transiciones) toma el lock
// de escritura durante toda la unidad de trabajo, así que nunca queda a medias.
type Store struct {
	mu sync.RWMutex

	seq int64

	owners map[string]ownerRow
	pets   map[string]petRow
	appts  map[string]apptRow

	docs map[document.Table]map[string]document.Document
}

type ownerRow struct {
	seq int64
	o   owners.Owner
}

type petRow struct {
	seq int64
	p   pets.Pet
}

type apptRow struct {
	seq int64
	a   appointments.Appointment
}

func New() *Store {
	return &Store{
		owners: make(map[string]ownerRow),
		pets:   make(map[string]petRow),
		appts:  make(map[string]apptRow),
		docs: map[document.Table]map[string]document.Document{
			document.TableOwners:       {},
			document.TablePets:         {},
			document.TableAppointments: {},
		},
	}
}

func (s *Store) Owners() owners.Repository             { return &ownerRepo{s: s} }
func (s *Store) Pets() pets.Repository                 { return &petRepo{s: s} }
func (s *Store) Appointments() appointments.Repository { return &apptRepo{s: s} }
func (s *Store) Documents() document.Store             { return &docStore{s: s} }
func (s *Store) Stats() stats.Reader                   { return &statsReader{s: s} }

// Close existe para cumplir la misma interfaz que los stores SQL.
func (s *Store) Close() error { return nil }

func (s *Store) nextSeq() int64 {
	s.seq++
	return s.seq
}

// helpers de documentos: asumen el lock tomado.

func (s *Store) docGet(t document.Table, id string) document.Document {
	d, ok := s.docs[t][id]
	if !ok {
		return document.New()
	}
	return d.Clone()
}

func (s *Store) docSet(t document.Table, id string, d document.Document) {
	if d == nil {
		d = document.New()
	}
	s.docs[t][id] = d.Clone()
}

func (s *Store) docDelete(t document.Table, id string) {
	delete(s.docs[t], id)
}

func (s *Store) exists(t document.Table, id string) bool {
	switch t {
	case document.TableOwners:
		_, ok := s.owners[id]
		return ok
	case document.TablePets:
		_, ok := s.pets[id]
		return ok
	case document.TableAppointments:
		_, ok := s.appts[id]
		return ok
	default:
		return false
	}
}

// seqOf devuelve el orden de creación de una fila (para queries de documentos).
func (s *Store) seqOf(t document.Table, id string) int64 {
	switch t {
	case document.TableOwners:
		return s.owners[id].seq
	case document.TablePets:
		return s.pets[id].seq
	default:
		return s.appts[id].seq
	}
}

// deleteAppointment borra la cita y su documento. Asume el lock de escritura.
func (s *Store) deleteAppointment(id string) {
	delete(s.appts, id)
	s.docDelete(document.TableAppointments, id)
}

// deletePet borra la mascota, sus citas y los documentos de todo eso. Asume el lock de escritura.
func (s *Store) deletePet(id string) {
	for aid, row := range s.appts {
		if row.a.PetID == id {
			s.deleteAppointment(aid)
		}
	}
	delete(s.pets, id)
	s.docDelete(document.TablePets, id)
}

func sortAppointments(rows []apptRow) []appointments.Appointment {
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].a.ScheduledAt.Equal(rows[j].a.ScheduledAt) {
			return rows[i].a.ScheduledAt.Before(rows[j].a.ScheduledAt)
		}
		return rows[i].seq < rows[j].seq
	})
	out := make([]appointments.Appointment, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.a)
	}
	return out
}

func idSet(ids []string) map[string]struct{} {
	if ids == nil {
		return nil
	}
	m := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return m
}
