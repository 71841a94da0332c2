// Package common contains the pieces shared by every layer of pocket:
//
//   - Error: the error taxonomy. Every failing operation reports exactly one of
//     three codes (RetCStorageError, RetCSerializationError, RetCEncryptionError)
//     which can be matched with errors.Is against ErrStorage, ErrSerialization
//     and ErrEncryption. A missing key is never an error.
//
//   - Logging: a custom implementation of dragonboat's logger.ILogger which is
//     installed as the global logger factory by InitLoggers. Packages obtain
//     their logger once with logger.GetLogger("<name>"). All pocket loggers
//     share one output, stderr unless InitLoggers or SetLogOutput is given
//     another writer.
//
//   - Config: the runtime configuration used by the command line tool to
//     assemble a pocket (storage, serializer, encryption, executor).
package common
