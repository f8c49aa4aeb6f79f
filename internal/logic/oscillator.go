package logic

// Charge schedule: the closer the accumulator gets to the trigger, the
// smaller the per-tick increment. The fast initial charge and slow
// final approach let a power-boosted neighbour converge on our phase
// instead of overshooting it forever.
const (
	bandCrawl = 6000 // above this: +1 per tick
	bandSlow  = 4000 // above this: +2
	bandMid   = 3000 // above this: +4
	bandFast  = 2000 // above this: +8; below: +16
)

// Mid-band: a neighbour flash arriving while the accumulator is inside
// this band is neither freshly reset nor about to trigger, so the
// neighbour is clearly out of phase with us.
const (
	midBandLow  = 2000
	midBandHigh = 7000
)

// Oscillator is the synchronization state machine: a phase accumulator
// with a detection threshold, post-flash blind window and adaptive
// nervousness. One Step call is one control tick.
type Oscillator struct {
	p         Params
	threshold uint16

	power   uint32
	blind   uint32
	nervous uint8
	counts  EventCounts
}

// NewOscillator creates an oscillator with the given tuning and
// ambient detection threshold. The threshold is fixed for the life of
// the oscillator.
func NewOscillator(p Params, threshold uint16) *Oscillator {
	return &Oscillator{
		p:         p,
		threshold: threshold,
	}
}

// ComputeThreshold returns the flash detection threshold: the average
// of the boot-time ambient samples plus the configured margin. The
// result intentionally exceeds the 8-bit sample range when the ambient
// average is already near saturation — detection then never fires,
// which is correct in bright surroundings.
func ComputeThreshold(samples []uint8, margin uint8) uint16 {
	var sum uint32
	for _, s := range samples {
		sum += uint32(s)
	}
	if len(samples) > 0 {
		sum /= uint32(len(samples))
	}
	return uint16(sum) + uint16(margin)
}

// Step runs one control tick: charge the accumulator, sense (unless
// blind), and trigger a flash if the accumulator crossed the trigger
// level. The trigger check is never gated on the blind window —
// blindness suppresses detection of others, not our own flash.
func (o *Oscillator) Step(in Input) Output {
	var out Output

	o.power += chargeStep(o.power)

	if o.blind == 0 {
		if in.Light > o.p.Daylight {
			o.counts.Daylight++
			out.Daylight = true
			out.Events = append(out.Events, Event{
				Timestamp: in.Time,
				Type:      EventDaylight,
				Light:     in.Light,
				Power:     o.power,
				Nervous:   o.nervous,
			})
		} else if uint16(in.Light) > o.threshold {
			// Neighbour flash. Inside the mid-band it is out of
			// phase with us and raises the nervous level; near a
			// reset or near the trigger it counts as in phase.
			if o.power > midBandLow && o.power < midBandHigh {
				o.raiseNervous()
			} else {
				o.decayNervous(o.p.NervousDown)
			}
			o.power += o.p.PowerBoost
			o.blind = o.p.BlindAfterOther
			o.counts.Seen++
			out.Events = append(out.Events, Event{
				Timestamp: in.Time,
				Type:      EventSeen,
				Light:     in.Light,
				Power:     o.power,
				Nervous:   o.nervous,
			})
		}
	} else {
		o.blind--
	}

	if o.power > o.p.FlashPower {
		hue := o.p.NervousMax - o.nervous
		out.Flash = &Flash{Hue: hue}
		out.Events = append(out.Events, Event{
			Timestamp: in.Time,
			Type:      EventFlash,
			Light:     in.Light,
			Power:     o.power,
			Nervous:   o.nervous,
			Hue:       hue,
		})
		o.power = 0
		o.blind = o.p.BlindAfterSelf
		o.decayNervous(o.p.NervousSelfDown)
		o.counts.Flashes++
	}

	return out
}

// chargeStep returns the accumulator increment for the current power
// level.
func chargeStep(power uint32) uint32 {
	switch {
	case power > bandCrawl:
		return 1
	case power > bandSlow:
		return 2
	case power > bandMid:
		return 4
	case power > bandFast:
		return 8
	default:
		return 16
	}
}

// raiseNervous increases the nervous level by one step, saturating at
// the cap.
func (o *Oscillator) raiseNervous() {
	if o.nervous >= o.p.NervousMax-o.p.NervousUp {
		o.nervous = o.p.NervousMax
		return
	}
	o.nervous += o.p.NervousUp
}

// decayNervous decreases the nervous level by step, saturating at 0.
func (o *Oscillator) decayNervous(step uint8) {
	if o.nervous > step {
		o.nervous -= step
	} else {
		o.nervous = 0
	}
}

// Power returns the current accumulator level.
func (o *Oscillator) Power() uint32 {
	return o.power
}

// Blind returns the remaining blind window in ticks.
func (o *Oscillator) Blind() uint32 {
	return o.blind
}

// Nervous returns the current nervous level.
func (o *Oscillator) Nervous() uint8 {
	return o.nervous
}

// Threshold returns the ambient detection threshold.
func (o *Oscillator) Threshold() uint16 {
	return o.threshold
}

// Counts returns the event counts since startup.
func (o *Oscillator) Counts() EventCounts {
	return o.counts
}
