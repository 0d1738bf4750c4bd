// Package media produces preview thumbnails for transcode sources. Video
// sources get a frame extracted via ffmpeg at a requested position; image
// sources (cover art, posters) decode directly. Frames are resized with
// libvips when it is available and with pure-Go imaging otherwise, encoded
// as JPEG, and cached on disk keyed by source path, position and width.
package media
