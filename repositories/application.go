//go:generate go run go.uber.org/mock/mockgen -source=application.go -destination=../mocks/mock_application_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"grant-desk/domain"
	"grant-desk/errors"
)

type IApplicationRepository interface {
	Store(app domain.GrantApplication) error
	Get(id uuid.UUID) (domain.GrantApplication, error)
	ListByApplicant(applicantID string) ([]domain.GrantApplication, error)
	ListAll() ([]domain.GrantApplication, error)
}

// ApplicationRepository persists grant applications in BadgerDB under
// "app:{id}" keys. Listings are prefix scans; the expected cardinality
// is low enough that no secondary index is kept.
type ApplicationRepository struct {
	db *badger.DB
}

func NewApplicationRepository(db *badger.DB) IApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Store upserts an application. Reviews rewrite the same key.
func (r ApplicationRepository) Store(app domain.GrantApplication) error {
	data, err := json.Marshal(app)
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte("app:"+app.ID.String()), data)
	})
}

func (r ApplicationRepository) Get(id uuid.UUID) (domain.GrantApplication, error) {
	var app domain.GrantApplication
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("app:" + id.String()))
		if err != nil {
			return errors.ErrApplicationNotFound
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &app)
		})
	})
	if err != nil {
		return domain.GrantApplication{}, err
	}
	return app, nil
}

func (r ApplicationRepository) ListByApplicant(applicantID string) ([]domain.GrantApplication, error) {
	all, err := r.ListAll()
	if err != nil {
		return nil, err
	}
	var res []domain.GrantApplication
	for _, app := range all {
		if app.ApplicantID == applicantID {
			res = append(res, app)
		}
	}
	return res, nil
}

func (r ApplicationRepository) ListAll() ([]domain.GrantApplication, error) {
	var apps []domain.GrantApplication
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte("app:")
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var app domain.GrantApplication
				if err := json.Unmarshal(val, &app); err != nil {
					return err
				}
				apps = append(apps, app)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Keys are random UUIDs, so scans come back unordered
	sort.Slice(apps, func(i, j int) bool {
		return apps[i].CreatedAt.Before(apps[j].CreatedAt)
	})
	return apps, nil
}
