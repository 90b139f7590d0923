package domain

// Category is a closed set of tags attached to an operation
type Category string

const (
	Food           Category = "food"
	Health         Category = "health"
	Tabacco        Category = "tabacco"
	Entertainment  Category = "entertainment"
	Transportation Category = "transportation"
	Housing        Category = "housing"
	Education      Category = "education"
	Savings        Category = "savings"
	Gifts          Category = "gifts"
	Salary         Category = "salary"
	Freelance      Category = "freelance"
	Investment     Category = "investment"
)

// Categories lists every known category in declaration order
var Categories = []Category{
	Food, Health, Tabacco, Entertainment, Transportation, Housing,
	Education, Savings, Gifts, Salary, Freelance, Investment,
}

// Valid reports whether c belongs to the closed category set
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}
