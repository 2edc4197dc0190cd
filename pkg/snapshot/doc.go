/*
Package snapshot freezes the content of a bucket at publish time.

A bucket holds master objects and slave objects, a slave carries a master
tag with the version id of its master. Copying the bucket gives every
object a new version id, so the master tags of the copies are rewritten
to point at the copied masters. All other tags are copied as they are.

The manager writes through the store.Tx it is given and never commits:
the caller decides whether the snapshot persists.
*/
package snapshot
