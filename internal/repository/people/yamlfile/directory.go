// Package yamlfile - каталог сотрудников, загружаемый из yaml-файла.
package yamlfile

import (
	"context"
	"fmt"
	"os"
	"slices"

	"teamCalendar/internal/logger"
	"teamCalendar/internal/models/person"
	repo "teamCalendar/internal/repository"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type file struct {
	People []person.Person `yaml:"people"`
}

// Directory неизменяем после загрузки
type Directory struct {
	people []person.Person
	byID   map[string]int
}

func Load(path string) (*Directory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("не могу открыть %s: %w", path, err)
	}
	defer f.Close()

	var parsed file
	if err := yaml.NewDecoder(f).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("ошибка парсинга %s: %w", path, err)
	}

	d, err := New(parsed.People)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logger.Info("Repository: Загружен каталог сотрудников", zap.String("path", path), zap.Int("people", len(parsed.People)))
	return d, nil
}

// New проверяет, что id заполнены и уникальны
func New(people []person.Person) (*Directory, error) {
	d := &Directory{byID: make(map[string]int, len(people))}
	for i, p := range people {
		if p.ID == "" {
			return nil, fmt.Errorf("запись %d: пустой id", i)
		}
		if _, dup := d.byID[p.ID]; dup {
			return nil, fmt.Errorf("повторяющийся id %q", p.ID)
		}
		if p.Name == "" {
			p.Name = p.ID
		}
		d.byID[p.ID] = len(d.people)
		d.people = append(d.people, p)
	}
	return d, nil
}

func (d *Directory) List(ctx context.Context) ([]person.Person, error) {
	return slices.Clone(d.people), nil
}

func (d *Directory) Get(ctx context.Context, id string) (person.Person, error) {

	i, ok := d.byID[id]
	if !ok {
		return person.Person{}, repo.ErrNotFound
	}
	return d.people[i], nil
}
