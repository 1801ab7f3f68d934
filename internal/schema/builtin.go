package schema

// Schema names of the application's record kinds.
const (
	UserSchema    = "User"
	ProductSchema = "Product"
	ServiceSchema = "Service"
	BookingSchema = "Booking"
)

func bound(v float64) *float64 { return &v }

// User is a registered user.
var User = Schema{
	Name: UserSchema,
	Fields: []Field{
		{Name: "name", Type: TypeString, Required: true, Description: "Full name"},
		{Name: "email", Type: TypeString, Required: true, Description: "Email address"},
		{Name: "address", Type: TypeString, Required: true, Description: "Address"},
		{Name: "age", Type: TypeInteger, Nullable: true,
			Constraint: &Constraint{Min: bound(0), Max: bound(120)}, Description: "Age in years"},
		{Name: "is_active", Type: TypeBoolean, Default: true, Description: "Whether user is active"},
	},
}

// Product is a catalogue product.
var Product = Schema{
	Name: ProductSchema,
	Fields: []Field{
		{Name: "title", Type: TypeString, Required: true, Description: "Product title"},
		{Name: "description", Type: TypeString, Nullable: true, Description: "Product description"},
		{Name: "price", Type: TypeFloat, Required: true,
			Constraint: &Constraint{Min: bound(0)}, Description: "Price in rupees"},
		{Name: "category", Type: TypeString, Required: true, Description: "Product category"},
		{Name: "in_stock", Type: TypeBoolean, Default: true, Description: "Whether product is in stock"},
	},
}

// Service is a housekeeping service offered to customers.
var Service = Schema{
	Name: ServiceSchema,
	Fields: []Field{
		{Name: "name", Type: TypeString, Required: true, Description: "Service name, e.g., Deep Cleaning"},
		{Name: "description", Type: TypeString, Required: true, Description: "Short description of the service"},
		{Name: "price_inr", Type: TypeInteger, Required: true,
			Constraint: &Constraint{Min: bound(0)}, Description: "Starting price in INR"},
		{Name: "unit", Type: TypeString, Required: true, Description: "Unit for pricing, e.g., per BHK, per visit"},
		{Name: "category", Type: TypeString, Required: true, Description: "Category, e.g., Cleaning, Pest Control"},
		{Name: "popular", Type: TypeBoolean, Default: false, Description: "Mark as popular service"},
	},
}

// Booking is a customer booking or inquiry.
var Booking = Schema{
	Name: BookingSchema,
	Fields: []Field{
		{Name: "customer_name", Type: TypeString, Required: true, Description: "Customer full name"},
		{Name: "phone", Type: TypeString, Required: true, Description: "Indian phone number"},
		{Name: "email", Type: TypeString, Nullable: true, Description: "Customer email"},
		{Name: "address", Type: TypeString, Required: true, Description: "Service address"},
		{Name: "city", Type: TypeString, Required: true, Description: "City"},
		{Name: "pincode", Type: TypeString, Required: true, Description: "PIN code"},
		{Name: "service_id", Type: TypeString, Nullable: true, Description: "Selected service id"},
		{Name: "service_name", Type: TypeString, Required: true, Description: "Selected service name"},
		{Name: "preferred_date", Type: TypeString, Required: true, Description: "Preferred date (YYYY-MM-DD)"},
		{Name: "preferred_time", Type: TypeString, Required: true, Description: "Preferred time slot, e.g., Morning"},
		{Name: "notes", Type: TypeString, Nullable: true, Description: "Additional notes"},
		{Name: "source", Type: TypeString, Default: "web", Description: "Source of booking"},
	},
}

var builtin = MustRegistry(User, Product, Service, Booking)

// Default returns the registry of the application's four schemas.
func Default() *Registry { return builtin }
