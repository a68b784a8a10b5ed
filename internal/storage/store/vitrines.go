package store

import (
	"fmt"
	"time"

	"github.com/isdev18/vitrine-do-vendedor/internal/models"
)

// CreateVitrine ensures the user has a storefront and returns it. The
// vitrine is normally created together with the user; calling this again
// is a harmless no-op that returns the existing record.
func (s *Store) CreateVitrine(userID string) (*models.Vitrine, error) {
	const op = "store.CreateVitrine"

	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.createVitrineLocked(userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return v, nil
}

func (s *Store) createVitrineLocked(userID string) (*models.Vitrine, error) {
	vitrines, err := load[models.Vitrine](s, keyVitrines)
	if err != nil {
		return nil, err
	}
	for i := range vitrines {
		if vitrines[i].UserID == userID {
			return &vitrines[i], nil
		}
	}

	now := time.Now().UTC()
	vitrine := models.Vitrine{
		ID:        newID(),
		UserID:    userID,
		CorTema:   models.DefaultVitrineCorTema,
		CreatedAt: now,
		UpdatedAt: now,
	}
	vitrines = append(vitrines, vitrine)
	if err := save(s, keyVitrines, vitrines); err != nil {
		return nil, err
	}
	return &vitrine, nil
}

// VitrineByUserID returns the user's storefront or models.ErrNotFound.
func (s *Store) VitrineByUserID(userID string) (*models.Vitrine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vitrineByUserLocked(userID)
}

func (s *Store) vitrineByUserLocked(userID string) (*models.Vitrine, error) {
	const op = "store.VitrineByUserID"

	vitrines, err := load[models.Vitrine](s, keyVitrines)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for i := range vitrines {
		if vitrines[i].UserID == userID {
			return &vitrines[i], nil
		}
	}
	return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
}

// VitrineBySlug returns the published storefront with the personalized
// URL, or models.ErrNotFound. Unpublished vitrines are never matched.
func (s *Store) VitrineBySlug(slug string) (*models.Vitrine, error) {
	const op = "store.VitrineBySlug"

	s.mu.Lock()
	defer s.mu.Unlock()

	vitrines, err := load[models.Vitrine](s, keyVitrines)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for i := range vitrines {
		if vitrines[i].URLPersonalizada == slug && vitrines[i].Publicada {
			return &vitrines[i], nil
		}
	}
	return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
}

// UpdateVitrine merges the non-nil fields into the user's storefront.
// Changing the personalized URL checks uniqueness against every other
// user and fails with models.ErrDuplicateKey on a clash.
func (s *Store) UpdateVitrine(userID string, update models.VitrineUpdate) (*models.Vitrine, error) {
	const op = "store.UpdateVitrine"

	s.mu.Lock()
	defer s.mu.Unlock()

	vitrines, err := load[models.Vitrine](s, keyVitrines)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	idx := -1
	for i := range vitrines {
		if vitrines[i].UserID == userID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}

	if update.URLPersonalizada != nil && *update.URLPersonalizada != "" {
		for i := range vitrines {
			if vitrines[i].URLPersonalizada == *update.URLPersonalizada && vitrines[i].UserID != userID {
				return nil, fmt.Errorf("%s: url %s: %w", op, *update.URLPersonalizada, models.ErrDuplicateKey)
			}
		}
	}

	v := &vitrines[idx]
	if update.Nome != nil {
		v.Nome = *update.Nome
	}
	if update.Slogan != nil {
		v.Slogan = *update.Slogan
	}
	if update.Descricao != nil {
		v.Descricao = *update.Descricao
	}
	if update.URLPersonalizada != nil {
		v.URLPersonalizada = *update.URLPersonalizada
	}
	if update.FotoPerfil != nil {
		v.FotoPerfil = *update.FotoPerfil
	}
	if update.Banner != nil {
		v.Banner = *update.Banner
	}
	if update.CorTema != nil {
		v.CorTema = *update.CorTema
	}
	if update.Whatsapp != nil {
		v.Whatsapp = *update.Whatsapp
	}
	if update.Instagram != nil {
		v.Instagram = *update.Instagram
	}
	if update.Facebook != nil {
		v.Facebook = *update.Facebook
	}
	if update.EmailContato != nil {
		v.EmailContato = *update.EmailContato
	}
	if update.Endereco != nil {
		v.Endereco = *update.Endereco
	}
	if update.Publicada != nil {
		v.Publicada = *update.Publicada
	}
	v.UpdatedAt = time.Now().UTC()

	if err := save(s, keyVitrines, vitrines); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.addLogLocked("vitrine_updated", userID, nil)
	out := vitrines[idx]
	return &out, nil
}

// PublishVitrine flips the published flag of the user's storefront.
func (s *Store) PublishVitrine(userID string) (*models.Vitrine, error) {
	published := true
	return s.UpdateVitrine(userID, models.VitrineUpdate{Publicada: &published})
}

// IncrementVitrineViews bumps the view counter. A missing vitrine is
// ignored, as public page hits race with account deletion.
func (s *Store) IncrementVitrineViews(vitrineID string) error {
	const op = "store.IncrementVitrineViews"

	s.mu.Lock()
	defer s.mu.Unlock()

	vitrines, err := load[models.Vitrine](s, keyVitrines)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	for i := range vitrines {
		if vitrines[i].ID == vitrineID {
			vitrines[i].Visualizacoes++
			if err := save(s, keyVitrines, vitrines); err != nil {
				return fmt.Errorf("%s: %w", op, err)
			}
			return nil
		}
	}
	return nil
}

// Vitrines returns every storefront.
func (s *Store) Vitrines() ([]models.Vitrine, error) {
	const op = "store.Vitrines"

	s.mu.Lock()
	defer s.mu.Unlock()

	vitrines, err := load[models.Vitrine](s, keyVitrines)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return vitrines, nil
}

func (s *Store) deleteVitrineByUserLocked(userID string) error {
	vitrines, err := load[models.Vitrine](s, keyVitrines)
	if err != nil {
		return err
	}
	kept := vitrines[:0]
	for _, v := range vitrines {
		if v.UserID != userID {
			kept = append(kept, v)
		}
	}
	if err := save(s, keyVitrines, kept); err != nil {
		return err
	}
	return s.deleteProdutosByUserLocked(userID)
}
