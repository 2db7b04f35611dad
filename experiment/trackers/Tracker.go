// Package trackers implements Trackers, which track and save data
// generated while evaluating a policy
package trackers

import (
	"encoding/gob"
	"os"

	"github.com/pkg/errors"
	ts "github.com/samuelfneumann/gopredict/timestep"
)

// Tracker keeps track of data from each TimeStep of an evaluation and
// saves the data after the evaluation has finished
type Tracker interface {
	Track(t ts.TimeStep)
	Save() error
}

// EpisodeTracker is a Tracker which also tracks the value table at the
// end of each episode
type EpisodeTracker interface {
	Tracker
	TrackEpisode(episode int, values []float64)
}

// save encodes data with gob and writes it to filename
func save(filename string, data interface{}) error {
	if filename == "" {
		return errors.New("save: no file to save to")
	}

	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "save: could not open save file")
	}
	defer file.Close()

	en := gob.NewEncoder(file)
	if err = en.Encode(data); err != nil {
		return errors.Wrapf(err, "save: could not encode data to %v",
			filename)
	}
	return file.Close()
}

// LoadData loads and returns the data saved by a Tracker
func LoadData[T any](filename string) ([]T, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "loadData: could not open data file")
	}
	defer file.Close()

	// Create the decoder and the variable to store the data in
	dec := gob.NewDecoder(file)
	var data []T

	if err = dec.Decode(&data); err != nil {
		return nil, errors.Wrapf(err, "loadData: could not decode data "+
			"from %v", filename)
	}

	return data, nil
}
