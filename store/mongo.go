package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"go-marketplace/models"
)

// Mongo implements Store on top of MongoDB. All multi-step consistency
// rests on single-document atomic updates: the conditional stock decrement
// and the order-append-plus-cart-clear are each one UpdateOne.
type Mongo struct {
	client     *mongo.Client
	users      *mongo.Collection
	products   *mongo.Collection
	categories *mongo.Collection
}

// NewMongo connects to MongoDB and returns a Store over the given database.
func NewMongo(ctx context.Context, uri, database string) (*Mongo, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	db := client.Database(database)
	return &Mongo{
		client:     client,
		users:      db.Collection("users"),
		products:   db.Collection("products"),
		categories: db.Collection("categories"),
	}, nil
}

// Close disconnects the underlying client.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// --- users ---

func (m *Mongo) CreateUser(ctx context.Context, user *models.User) (primitive.ObjectID, error) {
	count, err := m.users.CountDocuments(ctx, bson.M{"email": user.Email})
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return primitive.NilObjectID, ErrDuplicateEmail
	}

	result, err := m.users.InsertOne(ctx, user)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert user: %w", err)
	}
	return result.InsertedID.(primitive.ObjectID), nil
}

func (m *Mongo) UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := m.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

func (m *Mongo) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := m.users.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

func (m *Mongo) ListUsers(ctx context.Context) ([]models.User, error) {
	cursor, err := m.users.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

func (m *Mongo) SetUserRole(ctx context.Context, userID primitive.ObjectID, role models.Role) error {
	result, err := m.users.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": bson.M{"role": role}})
	if err != nil {
		return fmt.Errorf("set user role: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) SetUserActive(ctx context.Context, userID primitive.ObjectID, active bool) error {
	result, err := m.users.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": bson.M{"is_active": active}})
	if err != nil {
		return fmt.Errorf("set user active: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) SetCart(ctx context.Context, userID primitive.ObjectID, items []models.CartItem) error {
	if items == nil {
		items = []models.CartItem{}
	}
	result, err := m.users.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": bson.M{"cart": items}})
	if err != nil {
		return fmt.Errorf("set cart: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) AppendOrderAndClearCart(ctx context.Context, userID primitive.ObjectID, order models.Order) error {
	result, err := m.users.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$push": bson.M{"order_history": order},
		"$set":  bson.M{"cart": []models.CartItem{}},
	})
	if err != nil {
		return fmt.Errorf("append order: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// userOrderProjection decodes the $elemMatch projection of the embedded
// order history so a single order can be fetched without loading the whole
// array.
type userOrderProjection struct {
	ID           primitive.ObjectID `bson:"_id"`
	Email        string             `bson:"email"`
	OrderHistory []models.Order     `bson:"order_history"`
}

func (m *Mongo) OrderByID(ctx context.Context, userID, orderID primitive.ObjectID) (*models.Order, error) {
	opts := options.FindOne().SetProjection(bson.M{
		"order_history": bson.M{"$elemMatch": bson.M{"_id": orderID}},
	})
	var doc userOrderProjection
	err := m.users.FindOne(ctx, bson.M{"_id": userID, "order_history._id": orderID}, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}
	if len(doc.OrderHistory) == 0 {
		return nil, ErrNotFound
	}
	order := doc.OrderHistory[0]
	return &order, nil
}

func (m *Mongo) FindOrder(ctx context.Context, orderID primitive.ObjectID) (*OwnedOrder, error) {
	opts := options.FindOne().SetProjection(bson.M{
		"email":         1,
		"order_history": bson.M{"$elemMatch": bson.M{"_id": orderID}},
	})
	var doc userOrderProjection
	err := m.users.FindOne(ctx, bson.M{"order_history._id": orderID}, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}
	if len(doc.OrderHistory) == 0 {
		return nil, ErrNotFound
	}
	return &OwnedOrder{UserID: doc.ID, UserEmail: doc.Email, Order: doc.OrderHistory[0]}, nil
}

func (m *Mongo) UpdateOrderStatus(ctx context.Context, orderID primitive.ObjectID, from, to models.OrderStatus) error {
	filter := bson.M{
		"order_history": bson.M{"$elemMatch": bson.M{"_id": orderID, "status": from}},
	}
	update := bson.M{"$set": bson.M{"order_history.$.status": to}}

	result, err := m.users.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if result.MatchedCount == 0 {
		if _, err := m.FindOrder(ctx, orderID); err != nil {
			return err
		}
		return ErrStaleStatus
	}
	return nil
}

func (m *Mongo) OrdersByProducts(ctx context.Context, productIDs []primitive.ObjectID) ([]OwnedOrder, error) {
	ids := make(map[primitive.ObjectID]bool, len(productIDs))
	for _, id := range productIDs {
		ids[id] = true
	}

	cursor, err := m.users.Find(ctx, bson.M{"order_history.items.product_id": bson.M{"$in": productIDs}})
	if err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []OwnedOrder
	for cursor.Next(ctx) {
		var user models.User
		if err := cursor.Decode(&user); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		for _, order := range user.OrderHistory {
			if order.ContainsProduct(ids) {
				orders = append(orders, OwnedOrder{UserID: user.ID, UserEmail: user.Email, Order: order})
			}
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor: %w", err)
	}

	sort.Slice(orders, func(i, j int) bool {
		return orders[i].Order.CreatedAt.After(orders[j].Order.CreatedAt)
	})
	return orders, nil
}

func (m *Mongo) AddToWishlist(ctx context.Context, userID, productID primitive.ObjectID) error {
	result, err := m.users.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$addToSet": bson.M{"wishlist": productID}})
	if err != nil {
		return fmt.Errorf("add to wishlist: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) RemoveFromWishlist(ctx context.Context, userID, productID primitive.ObjectID) error {
	result, err := m.users.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$pull": bson.M{"wishlist": productID}})
	if err != nil {
		return fmt.Errorf("remove from wishlist: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// --- products ---

func (m *Mongo) CreateProduct(ctx context.Context, product *models.Product) (primitive.ObjectID, error) {
	result, err := m.products.InsertOne(ctx, product)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert product: %w", err)
	}
	return result.InsertedID.(primitive.ObjectID), nil
}

func (m *Mongo) ProductByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	err := m.products.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find product: %w", err)
	}
	return &product, nil
}

func (m *Mongo) ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	query := bson.M{}
	if filter.IncludeInactive {
		query["status"] = bson.M{"$ne": models.ProductDeleted}
	} else {
		query["status"] = models.ProductActive
	}
	if !filter.Category.IsZero() {
		query["category"] = filter.Category
	}
	if !filter.Seller.IsZero() {
		query["seller"] = filter.Seller
	}
	if filter.WithDiscounts {
		query["discounts.0"] = bson.M{"$exists": true}
	}

	cursor, err := m.products.Find(ctx, query, options.Find().SetSort(bson.M{"created_at": -1}))
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return products, nil
}

// UpdateProduct writes catalog fields only. Stock, reviews and rating have
// dedicated operations so this write cannot clobber concurrent decrements.
func (m *Mongo) UpdateProduct(ctx context.Context, product *models.Product) error {
	update := bson.M{"$set": bson.M{
		"name":        product.Name,
		"description": product.Description,
		"price":       product.Price,
		"category":    product.Category,
		"images":      product.Images,
		"status":      product.Status,
	}}
	result, err := m.products.UpdateOne(ctx, bson.M{"_id": product.ID}, update)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) SoftDeleteProduct(ctx context.Context, id primitive.ObjectID) error {
	result, err := m.products.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"status": models.ProductDeleted}})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	filter := bson.M{
		"_id":    id,
		"status": models.ProductActive,
		"stock":  bson.M{"$gte": qty},
	}
	result, err := m.products.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"stock": -qty}})
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	if result.MatchedCount == 0 {
		product, err := m.ProductByID(ctx, id)
		if err != nil {
			return err
		}
		if !product.Purchasable() {
			return ErrNotFound
		}
		return ErrInsufficientStock
	}
	return nil
}

func (m *Mongo) RestoreStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	result, err := m.products.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"stock": qty}})
	if err != nil {
		return fmt.Errorf("restore stock: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) SetStock(ctx context.Context, id primitive.ObjectID, stock int) error {
	result, err := m.products.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"stock": stock}})
	if err != nil {
		return fmt.Errorf("set stock: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) SetReviews(ctx context.Context, id primitive.ObjectID, reviews []models.Review, rating float64, numReviews int) error {
	if reviews == nil {
		reviews = []models.Review{}
	}
	result, err := m.products.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"reviews":     reviews,
		"rating":      rating,
		"num_reviews": numReviews,
	}})
	if err != nil {
		return fmt.Errorf("set reviews: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) AddDiscount(ctx context.Context, id primitive.ObjectID, discount models.Discount) error {
	result, err := m.products.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$push": bson.M{"discounts": discount}})
	if err != nil {
		return fmt.Errorf("add discount: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// --- categories ---

func (m *Mongo) CreateCategory(ctx context.Context, category *models.Category) (primitive.ObjectID, error) {
	result, err := m.categories.InsertOne(ctx, category)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert category: %w", err)
	}
	return result.InsertedID.(primitive.ObjectID), nil
}

func (m *Mongo) CategoryByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	var category models.Category
	err := m.categories.FindOne(ctx, bson.M{"_id": id}).Decode(&category)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find category: %w", err)
	}
	return &category, nil
}

func (m *Mongo) CategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	err := m.categories.FindOne(ctx, bson.M{"slug": slug}).Decode(&category)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find category: %w", err)
	}
	return &category, nil
}

func (m *Mongo) ListCategories(ctx context.Context) ([]models.Category, error) {
	cursor, err := m.categories.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"featured_order": 1}))
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer cursor.Close(ctx)

	var categories []models.Category
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	return categories, nil
}

func (m *Mongo) ListSubcategories(ctx context.Context, parentID primitive.ObjectID) ([]models.Category, error) {
	cursor, err := m.categories.Find(ctx, bson.M{"parent": parentID})
	if err != nil {
		return nil, fmt.Errorf("list subcategories: %w", err)
	}
	defer cursor.Close(ctx)

	var categories []models.Category
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, fmt.Errorf("decode subcategories: %w", err)
	}
	return categories, nil
}

func (m *Mongo) UpdateCategory(ctx context.Context, category *models.Category) error {
	update := bson.M{"$set": bson.M{
		"name":           category.Name,
		"description":    category.Description,
		"slug":           category.Slug,
		"parent":         category.Parent,
		"is_active":      category.IsActive,
		"featured_order": category.FeaturedOrder,
	}}
	result, err := m.categories.UpdateOne(ctx, bson.M{"_id": category.ID}, update)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCategory removes a category and its direct subcategories.
func (m *Mongo) DeleteCategory(ctx context.Context, id primitive.ObjectID) error {
	result, err := m.categories.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	if _, err := m.categories.DeleteMany(ctx, bson.M{"parent": id}); err != nil {
		return fmt.Errorf("delete subcategories: %w", err)
	}
	return nil
}
