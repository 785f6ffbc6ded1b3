package booking

// TaskKind discriminates the service task variants.
type TaskKind string

const (
	TaskCarpetCleaning   TaskKind = "carpet_cleaning"
	TaskPetStain         TaskKind = "pet_stain"
	TaskUpholstery       TaskKind = "upholstery"
	TaskCarpetStretching TaskKind = "carpet_stretching"
)

// Task is one entry in the run's service queue. Only the fields relevant to
// its Kind are populated.
type Task struct {
	Kind     TaskKind
	Bedrooms int    // carpet cleaning
	ItemKey  string // upholstery
	Label    string // upholstery catalog label
	Quantity int    // upholstery
}

// UpholsteryItem pairs a payload key with the catalog label shown on the
// booking site.
type UpholsteryItem struct {
	Key   string
	Label string
}

// UpholsteryCatalog fixes the enumeration order of upholstery line items.
// Queue order depends on it, so it must not be reordered.
var UpholsteryCatalog = []UpholsteryItem{
	{Key: "love_seat", Label: "Love Seat Cleaning"},
	{Key: "couch", Label: "Couch Cleaning"},
	{Key: "recliner", Label: "Recliner Cleaning"},
	{Key: "small_sectional", Label: "Small Sectional Cleaning"},
	{Key: "medium_sectional", Label: "Medium Sectional Cleaning"},
	{Key: "large_sectional", Label: "Large Sectional Cleaning"},
}

// BuildQueue translates a request into the ordered task sequence for one run.
// The family order (carpet cleaning, pet stain, upholstery items in catalog
// order, carpet stretching) is a policy choice and is deterministic for any
// given request. Upholstery items with a non-positive quantity contribute no
// task.
func BuildQueue(req *BookingRequest) []Task {
	var queue []Task

	if req.CarpetCleaning {
		queue = append(queue, Task{Kind: TaskCarpetCleaning, Bedrooms: req.Bedrooms})
	}
	if req.PetStain {
		queue = append(queue, Task{Kind: TaskPetStain})
	}
	if req.Upholstery {
		for _, item := range UpholsteryCatalog {
			qty := req.UpholsteryQuantity(item.Key)
			if qty <= 0 {
				continue
			}
			queue = append(queue, Task{
				Kind:     TaskUpholstery,
				ItemKey:  item.Key,
				Label:    item.Label,
				Quantity: qty,
			})
		}
	}
	if req.CarpetStretching {
		queue = append(queue, Task{Kind: TaskCarpetStretching})
	}

	return queue
}

// HasKind reports whether any task in the queue has the given kind.
func HasKind(queue []Task, kind TaskKind) bool {
	for _, t := range queue {
		if t.Kind == kind {
			return true
		}
	}
	return false
}
