package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/abv-ps/shop-api/internal/shop/domain"
)

// Repo implements domain.Repository over MongoDB collections.
type Repo struct {
	products *mongo.Collection
	orders   *mongo.Collection
}

func New(db *mongo.Database) *Repo {
	return &Repo{
		products: db.Collection("products"),
		orders:   db.Collection("orders"),
	}
}

// EnsureIndexes creates the category index used by product listings.
func (r *Repo) EnsureIndexes(ctx context.Context) error {
	_, err := r.products.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "category", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create product category index: %w", err)
	}
	return nil
}

func (r *Repo) InsertProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	res, err := r.products.InsertOne(ctx, p)
	if err != nil {
		return domain.Product{}, fmt.Errorf("failed to insert product: %w", err)
	}
	oid, _ := res.InsertedID.(primitive.ObjectID)
	p.ID = oid.Hex()
	return p, nil
}

func (r *Repo) DecrementStock(ctx context.Context, productID string, qty int) error {
	oid, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return domain.ErrInvalidProductID
	}
	res, err := r.products.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$inc": bson.M{"stock": -qty}},
	)
	if err != nil {
		return fmt.Errorf("failed to update stock for product %s: %w", productID, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *Repo) DeleteUnavailable(ctx context.Context) (int64, error) {
	res, err := r.products.DeleteMany(ctx, bson.M{"stock": 0})
	if err != nil {
		return 0, fmt.Errorf("failed to delete unavailable products: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *Repo) InsertOrder(ctx context.Context, o domain.Order) (domain.Order, error) {
	res, err := r.orders.InsertOne(ctx, o)
	if err != nil {
		return domain.Order{}, fmt.Errorf("failed to insert order: %w", err)
	}
	oid, _ := res.InsertedID.(primitive.ObjectID)
	o.ID = oid.Hex()
	return o, nil
}

type orderDoc struct {
	ID       primitive.ObjectID `bson:"_id"`
	Customer string             `bson:"customer"`
	Items    []domain.OrderItem `bson:"items"`
	Total    float64            `bson:"total"`
	Date     time.Time          `bson:"date"`
}

func (r *Repo) RecentOrders(ctx context.Context, limit int) ([]domain.Order, error) {
	if limit <= 0 {
		limit = 100
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}}).SetLimit(int64(limit))
	cur, err := r.orders.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent orders: %w", err)
	}
	defer cur.Close(ctx)

	var docs []orderDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	orders := make([]domain.Order, 0, len(docs))
	for _, d := range docs {
		orders = append(orders, domain.Order{
			ID:       d.ID.Hex(),
			Customer: d.Customer,
			Items:    d.Items,
			Total:    d.Total,
			Date:     d.Date,
		})
	}
	return orders, nil
}

func (r *Repo) SoldTotal(ctx context.Context, start, end time.Time) (int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"date": bson.M{"$gte": start, "$lte": end}}}},
		{{Key: "$unwind", Value: "$items"}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total_sold": bson.M{"$sum": "$items.quantity"}}}},
	}
	cur, err := r.orders.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to aggregate sold products: %w", err)
	}
	defer cur.Close(ctx)

	var res []struct {
		TotalSold int64 `bson:"total_sold"`
	}
	if err := cur.All(ctx, &res); err != nil {
		return 0, fmt.Errorf("failed to decode sold aggregate: %w", err)
	}
	if len(res) == 0 {
		return 0, nil
	}
	return res[0].TotalSold, nil
}

func (r *Repo) TotalSpentByCustomer(ctx context.Context, customer string) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"customer": customer}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$total"}}}},
	}
	cur, err := r.orders.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to aggregate customer spend: %w", err)
	}
	defer cur.Close(ctx)

	var res []struct {
		Total float64 `bson:"total"`
	}
	if err := cur.All(ctx, &res); err != nil {
		return 0, fmt.Errorf("failed to decode spend aggregate: %w", err)
	}
	if len(res) == 0 {
		return 0, nil
	}
	return res[0].Total, nil
}
