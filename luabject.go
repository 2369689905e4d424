package luabject

// DefaultBudget is the default number of guest instructions one pump may
// execute before the thread suspends. Smaller budgets yield finer-grained
// cooperation at higher per-pump overhead. Hosts tune it per runtime with
// runtime.WithBudget or per pump call.
const DefaultBudget int64 = 1000
