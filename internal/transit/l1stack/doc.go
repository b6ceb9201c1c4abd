// Package l1stack provides frame ingest for the transit analysis pipeline.
//
// It defines the Frame type (one grayscale image in a stack) and the two
// source interfaces the pipeline consumes: ImageSource for ordered frame
// sequences and MetadataSource for per-frame acquisition timestamps. File
// backed implementations decode TIFF/PNG frame exports and Andor-style
// metadata text files; everything downstream of this package operates on
// in-memory values only and never touches the filesystem.
package l1stack
