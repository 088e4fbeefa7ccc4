package domain

// ProgressFunc reports bulk refresh progress.
// Called once per finished list: (1, 12), (2, 12), ...
type ProgressFunc func(done, total int)
