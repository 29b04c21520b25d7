package domain

import "sort"

// Selection is the in-progress set of raffle numbers a buyer is choosing.
// It is a plain value type; callers hold one per submission.
type Selection struct {
	numbers map[int]struct{}
}

func NewSelection(numbers ...int) Selection {
	s := Selection{numbers: make(map[int]struct{}, len(numbers))}
	for _, n := range numbers {
		s.numbers[n] = struct{}{}
	}
	return s
}

// Toggle adds the number if absent and removes it if present, so toggling
// twice always restores the previous state.
func (s Selection) Toggle(number int) {
	if _, ok := s.numbers[number]; ok {
		delete(s.numbers, number)
		return
	}
	s.numbers[number] = struct{}{}
}

func (s Selection) Contains(number int) bool {
	_, ok := s.numbers[number]
	return ok
}

func (s Selection) Len() int { return len(s.numbers) }

// Sorted returns the selected numbers in ascending order.
func (s Selection) Sorted() []int {
	out := make([]int, 0, len(s.numbers))
	for n := range s.numbers {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}
