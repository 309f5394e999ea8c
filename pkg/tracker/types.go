package tracker

// Wire types for the external project-tracking API. The hierarchy is
// space -> folder -> list -> task, with folder-less lists attached directly
// to a space. All date fields arrive as epoch-millisecond strings.

type Team struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Space struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Archived bool   `json:"archived"`
}

type Folder struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type List struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Folder *Folder `json:"folder,omitempty"`
	Space  *Space  `json:"space,omitempty"`
}

type Status struct {
	Status string `json:"status"`
	Type   string `json:"type"`
}

type Priority struct {
	Priority string `json:"priority"`
}

type Tag struct {
	Name string `json:"name"`
}

type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// CustomField carries a user-defined field. Value is left untyped: depending
// on the field type it can be a string, number, bool, or a list.
type CustomField struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Type  string      `json:"type"`
	Value interface{} `json:"value"`
}

type TaskRef struct {
	ID string `json:"id"`
}

type TaskLink struct {
	TaskID string `json:"task_id"`
}

type Task struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Description  string        `json:"description"`
	Status       Status        `json:"status"`
	Priority     *Priority     `json:"priority"`
	Creator      User          `json:"creator"`
	Assignees    []User        `json:"assignees"`
	Tags         []Tag         `json:"tags"`
	URL          string        `json:"url"`
	DateCreated  string        `json:"date_created"`
	DateUpdated  string        `json:"date_updated"`
	DateClosed   string        `json:"date_closed"`
	DateDone     string        `json:"date_done"`
	DueDate      string        `json:"due_date"`
	StartDate    string        `json:"start_date"`
	TimeSpent    int64         `json:"time_spent"`
	TimeEstimate int64         `json:"time_estimate"`
	CommentCount int           `json:"comment_count"`
	Subtasks     []TaskRef     `json:"subtasks"`
	LinkedTasks  []TaskLink    `json:"linked_tasks"`
	CustomFields []CustomField `json:"custom_fields"`
	List         *List         `json:"list,omitempty"`
	Folder       *Folder       `json:"folder,omitempty"`
	Space        *Space        `json:"space,omitempty"`
}

type teamsResponse struct {
	Teams []Team `json:"teams"`
}

type spacesResponse struct {
	Spaces []Space `json:"spaces"`
}

type foldersResponse struct {
	Folders []Folder `json:"folders"`
}

type listsResponse struct {
	Lists []List `json:"lists"`
}

type tasksResponse struct {
	Tasks []Task `json:"tasks"`
}
