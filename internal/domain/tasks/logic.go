package tasks

// ApplyProgress folds a submission into the running count. Achieved caps at
// the target, and reaching the target completes the task.
func ApplyProgress(achieved, count, target int, status string) (int, string) {
	next := achieved + count
	if next > target {
		next = target
	}
	if next >= target {
		return next, StatusCompleted
	}
	return next, status
}

// RemoveProgress undoes a deleted submission. Achieved floors at zero, and a
// task that drops back under its target reopens.
func RemoveProgress(achieved, count, target int, status string) (int, string) {
	next := achieved - count
	if next < 0 {
		next = 0
	}
	if next < target {
		return next, StatusActive
	}
	return next, status
}

// CompletionRate is achieved over target as a percentage. A zero target
// reads as zero progress.
func CompletionRate(achieved, target int) float64 {
	if target <= 0 {
		return 0
	}
	return float64(achieved) / float64(target) * 100
}

func KnownType(t string) bool {
	for _, candidate := range Types {
		if candidate == t {
			return true
		}
	}
	return false
}

func KnownCategory(c string) bool {
	for _, candidate := range Categories {
		if candidate == c {
			return true
		}
	}
	return false
}

func KnownPriority(p string) bool {
	for _, candidate := range Priorities {
		if candidate == p {
			return true
		}
	}
	return false
}

func KnownStatus(s string) bool {
	for _, candidate := range Statuses {
		if candidate == s {
			return true
		}
	}
	return false
}
