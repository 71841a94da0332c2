// Package pocket implements the store orchestrator: it composes a serializer,
// an encryption and a durable storage into a typed key-value API with change
// notification.
//
// Data Flow:
//
//	write: value -> Serialize -> Encrypt(key) -> storage.Put -> publish key
//	read:  storage.Get -> Decrypt(key) -> Deserialize -> value
//
// A missing key is a normal result (Get returns false, GetOptional returns
// None), never an error. Failures carry exactly one of three kinds, which can be
// told apart with errors.Is against common.ErrStorage, common.ErrSerialization
// and common.ErrEncryption.
//
// Change Notification:
//
// Every successful Put and Delete publishes the key on the pocket's change bus
// after the mutation is visible to subsequent reads; DeleteAll publishes every
// key that existed before the clear. Delete publishes even if the key did not
// exist. The bus is hot and drops events for subscribers that do not keep up.
//
// Two derived streams re-read the storage on every relevant change instead of
// caching values, so the storage stays the single source of truth:
//
//   - Stream(key): the current Option[T] of key, then one value per change of key.
//   - StreamAll(): all values, then all values again after every change of any key.
//     Each write costs a full scan per StreamAll subscriber.
//
// Both subscribe before reading the initial state, so a change made after the
// stream was created is never missed.
//
// The bus only knows about writes through this pocket. Config.ExternalChanges
// can feed in keys changed by others, e.g. the output of fsstorage.Watch.
//
// Scheduling:
//
// Without an executor every operation runs on the calling goroutine. With one
// (see package executor) the storage work of each operation is submitted as one
// task and the caller waits for it or for its context. The storage lock orders
// all operations: a Get issued after a Put returned observes the new value.
//
// Usage:
//
//	store, _ := fsstorage.NewFileSystemStorage("data", nil)
//	p, _ := pocket.NewPocket(pocket.Config[Person]{
//		Storage:    store,
//		Serializer: serializer.NewJSONSerializer[Person](),
//	})
//	defer p.Close()
//
//	_ = p.Put(ctx, "people/ada", Person{Name: "Ada"})
//	s := p.Stream(ctx, "people/ada")
//	defer s.Cancel()
//	for v := range s.C() {
//		fmt.Println(v)
//	}
package pocket
