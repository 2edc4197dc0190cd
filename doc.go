/*
Package depot manages the files of deposits.

Files uploaded to a deposit land in its live bucket. Publishing a deposit
freezes the live bucket into a snapshot bucket, keeping the master/slave
relations between the original videos and their transcoded variants
intact in the copy.
*/
package depot
