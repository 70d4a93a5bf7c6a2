package config

import "fmt"

// Collection names. Each owns exactly one storage key.
const (
	CollectionExams            = "exams"
	CollectionExamSchedules    = "exam_schedules"
	CollectionWebinars         = "webinars"
	CollectionWebinarSchedules = "webinar_schedules"
	CollectionUsers            = "users"
)

type StoreKeyStruct struct {
	namespace string
}

func NewStoreKeyStruct(namespace string) *StoreKeyStruct {
	return &StoreKeyStruct{namespace: namespace}
}

// Collection returns the storage key for a named collection
func (k *StoreKeyStruct) Collection(name string) string {
	if k.namespace == "" {
		return name
	}
	return fmt.Sprintf("%s:%s", k.namespace, name)
}

// Exams returns the storage key for exam records
func (k *StoreKeyStruct) Exams() string {
	return k.Collection(CollectionExams)
}

// ExamSchedules returns the storage key for exam schedule entries
func (k *StoreKeyStruct) ExamSchedules() string {
	return k.Collection(CollectionExamSchedules)
}

// Webinars returns the storage key for webinar records
func (k *StoreKeyStruct) Webinars() string {
	return k.Collection(CollectionWebinars)
}

// WebinarSchedules returns the storage key for webinar schedule entries
func (k *StoreKeyStruct) WebinarSchedules() string {
	return k.Collection(CollectionWebinarSchedules)
}

// Users returns the storage key for user records
func (k *StoreKeyStruct) Users() string {
	return k.Collection(CollectionUsers)
}

// Changes returns the Redis pub/sub channel for change events
func (k *StoreKeyStruct) Changes() string {
	return k.Collection("changes")
}
