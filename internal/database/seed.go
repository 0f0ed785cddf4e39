package database

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"gmp-logbook/internal/models"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

//go:embed seed.yaml
var defaultSeed []byte

// PasswordCost: стоимость bcrypt для паролей из сида.
var PasswordCost = bcrypt.DefaultCost

type Seed struct {
	Users     []SeedUser      `yaml:"users"`
	Equipment []SeedEquipment `yaml:"equipment"`
	Rooms     []SeedRoom      `yaml:"rooms"`
}

type SeedUser struct {
	ID       string          `yaml:"id"`
	Name     string          `yaml:"name"`
	Role     models.UserRole `yaml:"role"`
	Password string          `yaml:"password"`
}

type SeedEquipment struct {
	ID       string               `yaml:"id"`
	Name     string               `yaml:"name"`
	Location string               `yaml:"location"`
	Type     models.EquipmentType `yaml:"type"`
	Status   string               `yaml:"status"`
}

type SeedRoom struct {
	ID             string `yaml:"id"`
	Name           string `yaml:"name"`
	Classification string `yaml:"classification"`
	Status         string `yaml:"status"`
}

// LoadSeed читает YAML с демо-данными. Пустой путь: встроенный набор.
func LoadSeed(path string) (*Seed, error) {
	data := defaultSeed
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read seed file: %w", err)
		}
		data = b
	}

	var s Seed
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	for _, u := range s.Users {
		if u.ID == "" || u.Password == "" || !u.Role.Valid() {
			return nil, fmt.Errorf("seed user %q: id, password and a known role are required", u.Name)
		}
	}
	return &s, nil
}

// Apply создаёт недостающие записи. Уже существующие (по ID) не трогаем.
func (s *Seed) Apply(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, u := range s.Users {
			found, err := exists(tx, &models.User{}, u.ID)
			if err != nil {
				return err
			}
			if found {
				continue
			}

			hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), PasswordCost)
			if err != nil {
				return fmt.Errorf("hash password for %s: %w", u.ID, err)
			}
			user := models.User{ID: u.ID, Name: u.Name, Role: u.Role, PasswordHash: string(hash)}
			if err := tx.Create(&user).Error; err != nil {
				return fmt.Errorf("create seed user %s: %w", u.ID, err)
			}
			log.Info().Str("id", u.ID).Str("role", string(u.Role)).Msg("created seed user")
		}

		for _, e := range s.Equipment {
			found, err := exists(tx, &models.Equipment{}, e.ID)
			if err != nil {
				return err
			}
			if found {
				continue
			}
			eq := models.Equipment{ID: e.ID, Name: e.Name, Location: e.Location, Type: e.Type, Status: e.Status}
			if err := tx.Create(&eq).Error; err != nil {
				return fmt.Errorf("create seed equipment %s: %w", e.ID, err)
			}
		}

		for _, r := range s.Rooms {
			found, err := exists(tx, &models.Room{}, r.ID)
			if err != nil {
				return err
			}
			if found {
				continue
			}
			room := models.Room{ID: r.ID, Name: r.Name, Classification: r.Classification, Status: r.Status}
			if err := tx.Create(&room).Error; err != nil {
				return fmt.Errorf("create seed room %s: %w", r.ID, err)
			}
		}
		return nil
	})
}

func exists(tx *gorm.DB, model any, id string) (bool, error) {
	var count int64
	if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check seed record %s: %w", id, err)
	}
	return count > 0, nil
}
