package main

import "testing"

func TestValidateTeams(t *testing.T) {
	tests := []struct {
		name    string
		humans  int
		bots    int
		wantErr bool
	}{
		{name: "one human three bots", humans: 1, bots: 3},
		{name: "all bots", humans: 0, bots: 4},
		{name: "full room", humans: 6, bots: 6},
		{name: "too few", humans: 0, bots: 3, wantErr: true},
		{name: "too many", humans: 5, bots: 8, wantErr: true},
		{name: "negative", humans: -1, bots: 6, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := validateTeams(tt.humans, tt.bots); (err != nil) != tt.wantErr {
				t.Fatalf("validateTeams(%d, %d) = %v, wantErr %t", tt.humans, tt.bots, err, tt.wantErr)
			}
		})
	}
}
