package seeder

import "github.com/askhat-dev/travel-marketplace/internal/domain/entity"

type cityEntry struct {
	City    string
	Country string
}

var cities = []cityEntry{
	{"New York", "United States"},
	{"London", "United Kingdom"},
	{"Paris", "France"},
	{"Tokyo", "Japan"},
	{"Sydney", "Australia"},
	{"Dubai", "United Arab Emirates"},
	{"Barcelona", "Spain"},
	{"Rome", "Italy"},
	{"Bangkok", "Thailand"},
	{"Amsterdam", "Netherlands"},
	{"Berlin", "Germany"},
	{"Singapore", "Singapore"},
	{"Istanbul", "Turkey"},
	{"Cairo", "Egypt"},
	{"Cape Town", "South Africa"},
}

var amenitiesPool = []string{
	"WiFi", "Air Conditioning", "Heating", "Kitchen", "Washer", "Dryer",
	"TV", "Parking", "Pool", "Gym", "Hot Tub", "Fireplace", "Balcony",
	"Garden", "Beach Access", "Mountain View", "City View", "Elevator",
	"Security System", "Pet Friendly", "Smoking Allowed", "Wheelchair Accessible",
}

var streetNames = []string{
	"Main St", "Park Ave", "Broadway", "Ocean Dr", "Mountain Rd", "Garden Ln", "Sunset Blvd",
}

// Titles are templates; %s is the city name.
var titleTemplates = map[entity.PropertyType][]string{
	entity.PropertyApartment: {
		"Cozy Apartment in %s",
		"Modern %s Apartment",
		"Stylish Downtown %s Apartment",
		"Luxury %s Apartment",
		"Spacious %s Apartment",
	},
	entity.PropertyHouse: {
		"Beautiful House in %s",
		"Family-Friendly %s House",
		"Charming %s Home",
		"Elegant %s House",
		"Traditional %s House",
	},
	entity.PropertyHotel: {
		"Grand %s Hotel",
		"Boutique %s Hotel",
		"Luxury %s Hotel",
		"Central %s Hotel",
		"Historic %s Hotel",
	},
	entity.PropertyVilla: {
		"Luxury Villa in %s",
		"Private %s Villa",
		"Beachfront %s Villa",
		"Modern %s Villa",
		"Elegant %s Villa",
	},
	entity.PropertyCottage: {
		"Charming Cottage in %s",
		"Cozy %s Cottage",
		"Rustic %s Cottage",
		"Quaint %s Cottage",
		"Traditional %s Cottage",
	},
	entity.PropertyHostel: {
		"Budget-Friendly %s Hostel",
		"Central %s Hostel",
		"Modern %s Hostel",
		"Social %s Hostel",
		"Clean %s Hostel",
	},
	entity.PropertyResort: {
		"Luxury %s Resort",
		"Beach %s Resort",
		"All-Inclusive %s Resort",
		"Family %s Resort",
		"Boutique %s Resort",
	},
}

var descriptions = []string{
	"A beautiful and well-maintained property perfect for your stay. Located in a prime area with easy access to local attractions.",
	"Experience comfort and luxury in this stunning property. Fully equipped with modern amenities and excellent service.",
	"Perfect for families and groups. This spacious property offers everything you need for a memorable vacation.",
	"Located in the heart of the city, this property provides easy access to restaurants, shops, and cultural sites.",
	"A peaceful retreat offering tranquility and relaxation. Ideal for those seeking a quiet getaway.",
	"Modern design meets comfort in this exceptional property. Features top-of-the-line amenities and stunning views.",
	"Historic charm with modern conveniences. This unique property offers a one-of-a-kind experience.",
	"Beachfront property with breathtaking ocean views. Perfect for beach lovers and water sports enthusiasts.",
	"Mountain view property surrounded by nature. Great for hiking, outdoor activities, and nature lovers.",
	"Urban chic property in the city center. Close to nightlife, dining, and entertainment options.",
}

type priceRange struct {
	Min, Max int
}

var priceRanges = map[entity.PropertyType]priceRange{
	entity.PropertyHostel:    {15, 50},
	entity.PropertyApartment: {50, 200},
	entity.PropertyHouse:     {80, 300},
	entity.PropertyCottage:   {60, 250},
	entity.PropertyHotel:     {100, 400},
	entity.PropertyVilla:     {200, 800},
	entity.PropertyResort:    {150, 600},
}

var specialRequests = []string{
	"Late check-in requested",
	"Early check-in if possible",
	"Extra towels needed",
	"Quiet room preferred",
	"High floor preferred",
}

// ratingWeights skews seeded reviews positive: 40/30/15/10/5 for ratings 5..1.
var ratingWeights = []struct {
	Rating int
	Weight int
}{
	{5, 40}, {4, 30}, {3, 15}, {2, 10}, {1, 5},
}

var ratingComments = map[int][]string{
	5: {
		"Excellent stay! Highly recommended.",
		"Perfect location and amazing amenities.",
		"One of the best places I've stayed.",
		"Absolutely wonderful experience!",
		"Exceeded all expectations.",
	},
	4: {
		"Great place, would stay again.",
		"Nice property with good amenities.",
		"Comfortable and well-located.",
		"Good value for money.",
		"Enjoyed my stay here.",
	},
	3: {
		"Decent place, nothing special.",
		"Average accommodation.",
		"It was okay, but could be better.",
		"Met basic expectations.",
	},
	2: {
		"Not as expected.",
		"Some issues during the stay.",
		"Could use improvements.",
	},
	1: {
		"Disappointing experience.",
		"Would not recommend.",
		"Many issues to address.",
	},
}

type seedUser struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Role      entity.Role
}

var seedHosts = []seedUser{
	{"host1", "host1@example.com", "John", "Smith", entity.RoleHost},
	{"host2", "host2@example.com", "Sarah", "Johnson", entity.RoleHost},
	{"host3", "host3@example.com", "Michael", "Brown", entity.RoleHost},
	{"host4", "host4@example.com", "Emily", "Davis", entity.RoleHost},
	{"host5", "host5@example.com", "David", "Wilson", entity.RoleHost},
}

var seedGuests = []seedUser{
	{"guest1", "guest1@example.com", "Guest1", "User", entity.RoleGuest},
	{"guest2", "guest2@example.com", "Guest2", "User", entity.RoleGuest},
	{"guest3", "guest3@example.com", "Guest3", "User", entity.RoleGuest},
	{"guest4", "guest4@example.com", "Guest4", "User", entity.RoleGuest},
	{"guest5", "guest5@example.com", "Guest5", "User", entity.RoleGuest},
}
