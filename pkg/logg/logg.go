package logg

// Field keys shared by every component logger.
const (
	Layer     = "layer"
	Operation = "operation"
	TaskID    = "task_id"
	Step      = "step"
	URL       = "url"
	Domain    = "domain"
	Action    = "action"
	Intent    = "intent"
	Selector  = "selector"
	ElementID = "element_id"
	Strategy  = "strategy"
	Goal      = "goal"
)
