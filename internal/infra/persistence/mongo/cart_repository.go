package mongo

import (
	"context"
	"time"

	"storefront/config"
	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
	"storefront/internal/errors"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// maxUpsertAttempts bounds the retry when two first-adds race on the unique user_id index.
const maxUpsertAttempts = 3

type cartDocument struct {
	UserID    string         `bson:"user_id"`
	Items     []cartItemBSON `bson:"items"`
	CreatedAt time.Time      `bson:"created_at"`
	UpdatedAt time.Time      `bson:"updated_at"`
	ExpiresAt time.Time      `bson:"expires_at"`
}

type cartItemBSON struct {
	ProductID string    `bson:"product_id"`
	Quantity  int       `bson:"quantity"`
	AddedAt   time.Time `bson:"added_at"`
}

type cartRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

// NewCartRepository builds the repository on the configured collection.
func NewCartRepository(db *mongo.Database, cfg *config.Config) repository.CartRepository {
	return newCartRepository(db.Collection(cfg.Mongo.CartCollection))
}

func newCartRepository(collection *mongo.Collection) *cartRepository {
	return &cartRepository{collection: collection, now: time.Now}
}

// EnsureIndexes creates the unique user index and the TTL index on expires_at.
func EnsureIndexes(ctx context.Context, db *mongo.Database, cfg *config.Config) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			// Documents expire at their own expires_at.
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}

	if _, err := db.Collection(cfg.Mongo.CartCollection).Indexes().CreateMany(ctx, indexes); err != nil {
		return errors.Wrap(err, "failed to create cart indexes")
	}

	return nil
}

func (r *cartRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*entity.Cart, error) {
	var doc cartDocument
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrCartNotFound
		}

		return nil, errors.Wrap(err, "failed to get cart")
	}

	// The TTL monitor runs about once a minute; treat overdue carts as gone.
	if !doc.ExpiresAt.IsZero() && doc.ExpiresAt.Before(r.now()) {
		return nil, repository.ErrCartNotFound
	}

	return toCartDomain(&doc), nil
}

func (r *cartRepository) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int, ttl time.Duration) (*entity.Cart, error) {
	return r.upsertLine(ctx, userID, productID, quantity, ttl, true)
}

func (r *cartRepository) SetItem(ctx context.Context, userID, productID uuid.UUID, quantity int, ttl time.Duration) (*entity.Cart, error) {
	return r.upsertLine(ctx, userID, productID, quantity, ttl, false)
}

// upsertLine adds to (increment) or overwrites an existing line, or pushes a
// new line, creating the cart when needed. Each branch is a single atomic update.
func (r *cartRepository) upsertLine(ctx context.Context, userID, productID uuid.UUID, quantity int, ttl time.Duration, increment bool) (*entity.Cart, error) {
	uid, pid := userID.String(), productID.String()

	// An overdue cart the TTL monitor has not reaped yet starts over.
	if _, err := r.collection.DeleteOne(ctx, bson.M{"user_id": uid, "expires_at": bson.M{"$lte": r.now()}}); err != nil {
		return nil, errors.Wrap(err, "failed to drop expired cart")
	}

	for attempt := 0; attempt < maxUpsertAttempts; attempt++ {
		now := r.now()
		touch := bson.M{"updated_at": now, "expires_at": now.Add(ttl)}

		lineUpdate := bson.M{"$set": touch}
		if increment {
			lineUpdate["$inc"] = bson.M{"items.$.quantity": quantity}
		} else {
			touch["items.$.quantity"] = quantity
		}

		var doc cartDocument
		err := r.collection.FindOneAndUpdate(ctx,
			bson.M{"user_id": uid, "items.product_id": pid},
			lineUpdate,
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&doc)
		if err == nil {
			return toCartDomain(&doc), nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errors.Wrap(err, "failed to update cart item")
		}

		err = r.collection.FindOneAndUpdate(ctx,
			bson.M{"user_id": uid, "items.product_id": bson.M{"$ne": pid}},
			bson.M{
				"$push":        bson.M{"items": cartItemBSON{ProductID: pid, Quantity: quantity, AddedAt: now}},
				"$set":         bson.M{"updated_at": now, "expires_at": now.Add(ttl)},
				"$setOnInsert": bson.M{"created_at": now},
			},
			options.FindOneAndUpdate().SetReturnDocument(options.After).SetUpsert(true),
		).Decode(&doc)
		if err == nil {
			return toCartDomain(&doc), nil
		}
		// A concurrent add created the cart or the line first; retry the update path.
		if !mongo.IsDuplicateKeyError(err) {
			return nil, errors.Wrap(err, "failed to add cart item")
		}
	}

	return nil, errors.New("cart update kept conflicting, giving up")
}

func (r *cartRepository) RemoveItem(ctx context.Context, userID, productID uuid.UUID, ttl time.Duration) (*entity.Cart, error) {
	now := r.now()

	var doc cartDocument
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{
			"user_id":          userID.String(),
			"items.product_id": productID.String(),
			"expires_at":       bson.M{"$gt": now},
		},
		bson.M{
			"$pull": bson.M{"items": bson.M{"product_id": productID.String()}},
			"$set":  bson.M{"updated_at": now, "expires_at": now.Add(ttl)},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrCartItemNotFound
		}

		return nil, errors.Wrap(err, "failed to remove cart item")
	}

	return toCartDomain(&doc), nil
}

func (r *cartRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"user_id": userID.String()})
	if err != nil {
		return errors.Wrap(err, "failed to delete cart")
	}
	if result.DeletedCount == 0 {
		return repository.ErrCartNotFound
	}

	return nil
}

func (r *cartRepository) List(ctx context.Context) ([]*entity.Cart, error) {
	cursor, err := r.collection.Find(ctx,
		bson.M{"expires_at": bson.M{"$gt": r.now()}},
		options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}}),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list carts")
	}
	defer cursor.Close(ctx)

	var docs []cartDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "failed to decode carts")
	}

	carts := make([]*entity.Cart, 0, len(docs))
	for i := range docs {
		carts = append(carts, toCartDomain(&docs[i]))
	}

	return carts, nil
}

func toCartDomain(doc *cartDocument) *entity.Cart {
	cart := &entity.Cart{
		UserID:    uuid.MustParse(doc.UserID),
		Items:     make([]entity.CartItem, 0, len(doc.Items)),
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
		ExpiresAt: doc.ExpiresAt,
	}
	for _, item := range doc.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil || item.Quantity <= 0 {
			continue
		}
		cart.Items = append(cart.Items, entity.CartItem{
			ProductID: productID,
			Quantity:  item.Quantity,
			AddedAt:   item.AddedAt,
		})
	}

	return cart
}
