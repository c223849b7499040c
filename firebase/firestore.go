package firebase

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"patient-activation/models"
	"patient-activation/storage"
	"patient-activation/utilities"
)

type objectiveDoc struct {
	Title      string `firestore:"title"`
	Category   string `firestore:"category"`
	Status     string `firestore:"status"`
	Priority   string `firestore:"priority"`
	TargetDate string `firestore:"targetDate"`
}

// FirestoreStore implements storage.Store on one Firestore collection. The
// document id is the objective id.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
}

func NewFirestoreStore(client *firestore.Client, collection string) *FirestoreStore {
	if collection == "" {
		collection = storage.TableName
	}
	return &FirestoreStore{client: client, collection: collection}
}

func (s *FirestoreStore) objectives() *firestore.CollectionRef {
	return s.client.Collection(s.collection)
}

// EnsureSchema has nothing to create; collections appear with their first document.
func (s *FirestoreStore) EnsureSchema(ctx context.Context) error {
	utilities.LogInfo("firestore collection %s is created on first write", s.collection)
	return nil
}

func (s *FirestoreStore) Ping(ctx context.Context) error {
	iter := s.objectives().Limit(1).Documents(ctx)
	defer iter.Stop()
	if _, err := iter.Next(); err != nil && err != iterator.Done {
		return err
	}
	return nil
}

func (s *FirestoreStore) List(ctx context.Context) ([]models.Objective, error) {
	iter := s.objectives().OrderBy("targetDate", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	objectives := []models.Objective{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, storage.Unavailable("list", fmt.Errorf("iterating objectives: %w", err))
		}
		o, err := fromSnapshot(doc)
		if err != nil {
			return nil, storage.Unavailable("list", err)
		}
		objectives = append(objectives, o)
	}
	return objectives, nil
}

func (s *FirestoreStore) Get(ctx context.Context, id string) (models.Objective, error) {
	doc, err := s.objectives().Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return models.Objective{}, storage.ErrNotFound
	}
	if err != nil {
		return models.Objective{}, storage.Unavailable("get", fmt.Errorf("fetching objective %s: %w", id, err))
	}
	o, err := fromSnapshot(doc)
	if err != nil {
		return models.Objective{}, storage.Unavailable("get", err)
	}
	return o, nil
}

func (s *FirestoreStore) Create(ctx context.Context, in models.InsertObjective) (models.Objective, error) {
	o := in.WithID(uuid.NewString())
	doc := objectiveDoc{
		Title:      o.Title,
		Category:   string(o.Category),
		Status:     string(o.Status),
		Priority:   string(o.Priority),
		TargetDate: o.TargetDate,
	}
	if _, err := s.objectives().Doc(o.ID).Create(ctx, doc); err != nil {
		return models.Objective{}, storage.Unavailable("create", fmt.Errorf("creating objective: %w", err))
	}
	return o, nil
}

// Update relies on Firestore rejecting updates of missing documents, so the
// existence check and the write are one call.
func (s *FirestoreStore) Update(ctx context.Context, id string, patch models.ObjectivePatch) (models.Objective, error) {
	if patch.IsEmpty() {
		return s.Get(ctx, id)
	}

	_, err := s.objectives().Doc(id).Update(ctx, fieldUpdates(patch))
	if status.Code(err) == codes.NotFound {
		return models.Objective{}, storage.ErrNotFound
	}
	if err != nil {
		return models.Objective{}, storage.Unavailable("update", fmt.Errorf("updating objective %s: %w", id, err))
	}
	return s.Get(ctx, id)
}

func (s *FirestoreStore) Delete(ctx context.Context, id string) error {
	_, err := s.objectives().Doc(id).Delete(ctx, firestore.Exists)
	if status.Code(err) == codes.NotFound {
		return storage.ErrNotFound
	}
	if err != nil {
		return storage.Unavailable("delete", fmt.Errorf("deleting objective %s: %w", id, err))
	}
	return nil
}

func fieldUpdates(patch models.ObjectivePatch) []firestore.Update {
	var updates []firestore.Update
	if patch.Title.Set {
		updates = append(updates, firestore.Update{Path: "title", Value: patch.Title.Value})
	}
	if patch.Category.Set {
		updates = append(updates, firestore.Update{Path: "category", Value: string(patch.Category.Value)})
	}
	if patch.Status.Set {
		updates = append(updates, firestore.Update{Path: "status", Value: string(patch.Status.Value)})
	}
	if patch.Priority.Set {
		updates = append(updates, firestore.Update{Path: "priority", Value: string(patch.Priority.Value)})
	}
	if patch.TargetDate.Set {
		updates = append(updates, firestore.Update{Path: "targetDate", Value: patch.TargetDate.Value})
	}
	return updates
}

func fromSnapshot(doc *firestore.DocumentSnapshot) (models.Objective, error) {
	var d objectiveDoc
	if err := doc.DataTo(&d); err != nil {
		return models.Objective{}, fmt.Errorf("decoding objective %s: %w", doc.Ref.ID, err)
	}
	return models.Objective{
		ID:         doc.Ref.ID,
		Title:      d.Title,
		Category:   models.Category(d.Category),
		Status:     models.Status(d.Status),
		Priority:   models.Priority(d.Priority),
		TargetDate: d.TargetDate,
	}, nil
}
