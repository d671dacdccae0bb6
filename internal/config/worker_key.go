package config

type WorkerKeyStruct struct {
	PersistResultsQueue   string
	PersistSnapshotsQueue string
}

var WorkerKey = &WorkerKeyStruct{
	PersistResultsQueue:   "persist_results_queue",
	PersistSnapshotsQueue: "persist_snapshots_queue",
}
