// Package watch converts export files as they land in a directory.
//
// A Watcher holds a single-instance lock under the state directory, listens
// for create and write events on .json and .csv files, waits for the file to
// go quiet for the debounce period, and hands the settled files to a
// batch.Runner that writes into a separate output directory.
package watch
