package rtc

// Sample-rate conversion between the realtime channel's PCM formats and the
// 48kHz WebRTC leg. Mono 16-bit little-endian throughout.

// Upsample24to48 doubles the sample rate by linear interpolation. The model
// emits 24kHz audio; the browser track runs at 48kHz.
func Upsample24to48(pcm []byte) []byte {
	n := len(pcm) / 2
	if n == 0 {
		return nil
	}
	out := make([]byte, n*4)
	prev := int16(uint16(pcm[0]) | uint16(pcm[1])<<8)
	for i := 0; i < n; i++ {
		cur := int16(uint16(pcm[2*i]) | uint16(pcm[2*i+1])<<8)
		mid := int16((int32(prev) + int32(cur)) / 2)
		putSample(out, 2*i, mid)
		putSample(out, 2*i+1, cur)
		prev = cur
	}
	return out
}

// Downsample48to16 decimates by three with a small averaging window to tame
// aliasing. Browser microphone audio is 48kHz; the realtime channel expects
// 16kHz input.
func Downsample48to16(samples []int16) []byte {
	n := len(samples) / 3
	out := make([]byte, n*2)
	for i := 0; i < n; i++ {
		j := i * 3
		sum := int32(samples[j])
		count := int32(1)
		if j+1 < len(samples) {
			sum += int32(samples[j+1])
			count++
		}
		if j+2 < len(samples) {
			sum += int32(samples[j+2])
			count++
		}
		putSample(out, i, int16(sum/count))
	}
	return out
}

func putSample(buf []byte, i int, v int16) {
	buf[2*i] = byte(uint16(v))
	buf[2*i+1] = byte(uint16(v) >> 8)
}
