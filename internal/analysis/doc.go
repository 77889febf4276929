// Package analysis characterises recorded sessions: how fast the ball
// settles, how hard it oscillates and where it travelled.
//
//	hz, _ := analysis.DominantFrequency(ballX, sampleRate)
//	t, ok := analysis.SettlingTime(distance, dt, 0.01)
package analysis
