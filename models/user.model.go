package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleCustomer      Role = "customer"
	RoleSeller        Role = "seller"
	RoleAdministrator Role = "administrator"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleSeller, RoleAdministrator:
		return true
	}
	return false
}

// Address represents a user's address for delivery
type Address struct {
	Street  string `bson:"street" json:"street"`
	City    string `bson:"city" json:"city"`
	State   string `bson:"state" json:"state"`
	Country string `bson:"country" json:"country"`
	ZipCode string `bson:"zipcode" json:"zipcode"`
}

// CartItem represents a pending-purchase line item. A cart holds at most
// one line per product; adding an existing product merges quantities.
type CartItem struct {
	ProductID primitive.ObjectID `bson:"product_id" json:"product_id"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}

// User represents a user in the system. The cart and order history are
// embedded so checkout can append an order and clear the cart in a single
// atomic document write.
type User struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id,omitempty"`
	Username     string               `bson:"username" json:"username"`
	Email        string               `bson:"email" json:"email"`
	Password     string               `bson:"password,omitempty" json:"-"`
	Phone        string               `bson:"phone,omitempty" json:"phone,omitempty"`
	Address      Address              `bson:"address" json:"address"`
	Role         Role                 `bson:"role" json:"role"`
	IsActive     bool                 `bson:"is_active" json:"is_active"`
	Cart         []CartItem           `bson:"cart" json:"cart"`
	OrderHistory []Order              `bson:"order_history" json:"order_history"`
	Wishlist     []primitive.ObjectID `bson:"wishlist" json:"wishlist"`
	CreatedAt    time.Time            `bson:"created_at" json:"created_at"`
}

// CartLine returns the cart line for the given product, if present.
func (u *User) CartLine(productID primitive.ObjectID) (CartItem, bool) {
	for _, item := range u.Cart {
		if item.ProductID == productID {
			return item, true
		}
	}
	return CartItem{}, false
}
