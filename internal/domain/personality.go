package domain

// Personality is one of the ten fixed behavioral archetypes. Assignment is a
// pure function of Stats and is never stored independently of its source
// stats, except inside a frozen share snapshot.
type Personality struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Emoji       string `json:"emoji"`
	Description string `json:"description"`
}
