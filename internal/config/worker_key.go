package config

type WorkerKeyStruct struct {
	PersistProgressQueue string
}

var WorkerKey = &WorkerKeyStruct{
	PersistProgressQueue: "persist_progress_queue",
}
